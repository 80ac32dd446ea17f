package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("Workflow not found")
	ErrTaskNotFound = core.NewNotFoundError("Task not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CreateWorkflow inserts the workflow, its tasks, its assignments and their task progress
		// in one transaction, assigning ids.
		CreateWorkflow(ctx context.Context, wf Workflow) (Workflow, error)
		// QueryWorkflows returns every workflow, newest first, with tasks (by order) and
		// assignments (with user and progress).
		QueryWorkflows(ctx context.Context) ([]Workflow, error)
		// QueryUserAssignments returns the assignments of userID with their workflow, newest first.
		QueryUserAssignments(ctx context.Context, userID string) ([]AssignedWorkflow, error)
		// GetUserAssignment returns ErrNotFound if userID is not assigned to workflowID.
		GetUserAssignment(ctx context.Context, userID, workflowID string) (AssignedWorkflow, error)
		// SaveTaskProgress upserts the progress, then re-derives the assignment status from the
		// stored progress of every task, in one transaction that excludes concurrent writers of
		// the same assignment. It returns the new status.
		SaveTaskProgress(ctx context.Context, tp TaskProgress) (string, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(usrRepo, "usrRepo"),
	).CheckAndPanic()

	return &Service{repo: repo, usrRepo: usrRepo}
}

// Create builds the workflow of nw, assigned by admin. Task order is their index in nw.Tasks.
func (svc *Service) Create(ctx context.Context, admin user.User, nw NewWorkflow) (Workflow, error) {
	now := time.Now().UTC()

	assignees := make([]user.User, 0, len(nw.AssignedUsers))
	for i, id := range nw.AssignedUsers {
		usr, err := svc.usrRepo.GetUserByID(ctx, id)
		if err != nil && err != user.ErrNotFound {
			return Workflow{}, errors.Wrap(err, "finding assignee")
		}
		if err == user.ErrNotFound || !usr.IsStudent() {
			return Workflow{}, core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("assignedUsers[%d]", i),
				Error: fmt.Sprintf("no student with id %q", id),
			})
		}
		assignees = append(assignees, usr)
	}

	wf := Workflow{
		Title:       nw.Title,
		Description: nw.Description,
		Category:    nw.Category,
		AssignedBy:  admin.ID,
		CreatedAt:   now,
		Tasks:       make([]Task, 0, len(nw.Tasks)),
		Assignments: make([]Assignment, 0, len(assignees)),
	}
	if due := nw.DueDate.Ptr(); due != nil {
		wf.DueDate = null.TimeFrom(*due)
	}
	for i, t := range nw.Tasks {
		wf.Tasks = append(wf.Tasks, Task{
			Title:          t.Title,
			Type:           t.Type,
			Order:          i,
			Score:          null.IntFromPtr(t.Score),
			TotalQuestions: null.IntFromPtr(t.TotalQuestions),
			Duration:       null.NewString(t.Duration, t.Duration != ""),
		})
	}
	for _, usr := range assignees {
		wf.Assignments = append(wf.Assignments, Assignment{
			UserID:     usr.ID,
			Status:     StatusNotStarted,
			AssignedAt: now,
			User:       usr.Public(),
		})
	}

	wf, err := svc.repo.CreateWorkflow(ctx, wf)
	if err != nil {
		return Workflow{}, errors.Wrap(err, "creating workflow")
	}
	return withCounts(wf), nil
}

// QueryAll is the admin view.
func (svc *Service) QueryAll(ctx context.Context) ([]Workflow, error) {
	wfs, err := svc.repo.QueryWorkflows(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying workflows")
	}
	for i := range wfs {
		wfs[i] = withCounts(wfs[i])
	}
	return wfs, nil
}

// QueryAssigned is the view of the workflows assigned to userID.
func (svc *Service) QueryAssigned(ctx context.Context, userID string) ([]StudentWorkflow, error) {
	aws, err := svc.repo.QueryUserAssignments(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	now := NowFunc()
	views := make([]StudentWorkflow, 0, len(aws))
	for _, aw := range aws {
		views = append(views, ToStudentWorkflow(aw, now))
	}
	return views, nil
}

// CompleteTask records the caller's completion of one task and re-derives their assignment status.
func (svc *Service) CompleteTask(ctx context.Context, usr user.User, workflowID, taskID string, tc TaskCompletion) (StudentWorkflow, error) {
	aw, err := svc.repo.GetUserAssignment(ctx, usr.ID, workflowID)
	if err != nil {
		return StudentWorkflow{}, err
	}

	var found bool
	for _, t := range aw.Workflow.Tasks {
		if t.ID == taskID {
			found = true
			break
		}
	}
	if !found {
		return StudentWorkflow{}, ErrTaskNotFound
	}

	tp := TaskProgress{
		AssignmentID: aw.Assignment.ID,
		TaskID:       taskID,
		Completed:    *tc.Completed,
	}
	if tp.Completed {
		tp.Score = null.IntFromPtr(tc.Score)
		tp.CompletedAt = null.TimeFrom(time.Now().UTC())
	}

	if _, err = svc.repo.SaveTaskProgress(ctx, tp); err != nil {
		return StudentWorkflow{}, errors.Wrap(err, "saving task progress")
	}

	// concurrent completions may have landed too
	if aw, err = svc.repo.GetUserAssignment(ctx, usr.ID, workflowID); err != nil {
		return StudentWorkflow{}, errors.Wrap(err, "reloading assignment")
	}
	return ToStudentWorkflow(aw, NowFunc()), nil
}
