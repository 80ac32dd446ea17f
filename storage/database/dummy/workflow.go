package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

type workflowRepository struct {
	db *DB
}

var _ workflow.Repository = (*workflowRepository)(nil) // interface compliance check

func NewWorkflowRepository(db *DB) workflow.Repository {
	return &workflowRepository{db: db}
}

func (repo *workflowRepository) CreateWorkflow(_ context.Context, wf workflow.Workflow) (workflow.Workflow, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	wf.ID = uuid.New().String()
	for i := range wf.Tasks {
		wf.Tasks[i].ID = uuid.New().String()
		wf.Tasks[i].WorkflowID = wf.ID
	}
	for i := range wf.Assignments {
		a := &wf.Assignments[i]
		a.ID = uuid.New().String()
		a.WorkflowID = wf.ID
		a.Progress = make([]workflow.TaskProgress, 0, len(wf.Tasks))
		for _, t := range wf.Tasks {
			a.Progress = append(a.Progress, workflow.TaskProgress{AssignmentID: a.ID, TaskID: t.ID})
		}
		stored := *a
		stored.Progress = append([]workflow.TaskProgress(nil), a.Progress...)
		repo.db.assignments = append(repo.db.assignments, &stored)
	}

	row := wf
	row.Tasks = append([]workflow.Task(nil), wf.Tasks...)
	row.Assignments = nil
	repo.db.workflows = append(repo.db.workflows, &row)
	return wf, nil
}

// copyAssignment must be called with the lock held.
func (repo *workflowRepository) copyAssignment(a *workflow.Assignment) workflow.Assignment {
	cp := *a
	cp.Progress = append([]workflow.TaskProgress{}, a.Progress...)
	if usr, ok := repo.db.users[a.UserID]; ok {
		cp.User = user.PublicUser{ID: usr.ID, Name: usr.Name, Email: usr.Email}
	}
	return cp
}

func copyWorkflow(wf *workflow.Workflow) workflow.Workflow {
	cp := *wf
	cp.Tasks = append([]workflow.Task{}, wf.Tasks...)
	sort.SliceStable(cp.Tasks, func(i, j int) bool { return cp.Tasks[i].Order < cp.Tasks[j].Order })
	cp.Assignments = []workflow.Assignment{}
	return cp
}

// newestFirst returns the workflows, newest first. It must be called with the lock held.
func (repo *workflowRepository) newestFirst() []*workflow.Workflow {
	wfs := append([]*workflow.Workflow(nil), repo.db.workflows...)
	sort.SliceStable(wfs, func(i, j int) bool { return wfs[i].CreatedAt.After(wfs[j].CreatedAt) })
	return wfs
}

func (repo *workflowRepository) QueryWorkflows(_ context.Context) ([]workflow.Workflow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sorted := repo.newestFirst()
	wfs := make([]workflow.Workflow, 0, len(sorted))
	for _, row := range sorted {
		wf := copyWorkflow(row)
		for _, a := range repo.db.assignments {
			if a.WorkflowID == wf.ID {
				wf.Assignments = append(wf.Assignments, repo.copyAssignment(a))
			}
		}
		wfs = append(wfs, wf)
	}
	return wfs, nil
}

func (repo *workflowRepository) QueryUserAssignments(_ context.Context, userID string) ([]workflow.AssignedWorkflow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	aws := []workflow.AssignedWorkflow{}
	for _, row := range repo.newestFirst() {
		for _, a := range repo.db.assignments {
			if a.WorkflowID == row.ID && a.UserID == userID {
				aws = append(aws, workflow.AssignedWorkflow{Assignment: repo.copyAssignment(a), Workflow: copyWorkflow(row)})
			}
		}
	}
	return aws, nil
}

func (repo *workflowRepository) GetUserAssignment(_ context.Context, userID, workflowID string) (workflow.AssignedWorkflow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, row := range repo.db.workflows {
		if row.ID != workflowID {
			continue
		}
		for _, a := range repo.db.assignments {
			if a.WorkflowID == workflowID && a.UserID == userID {
				return workflow.AssignedWorkflow{Assignment: repo.copyAssignment(a), Workflow: copyWorkflow(row)}, nil
			}
		}
	}
	return workflow.AssignedWorkflow{}, workflow.ErrNotFound
}

func (repo *workflowRepository) SaveTaskProgress(_ context.Context, tp workflow.TaskProgress) (string, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range repo.db.assignments {
		if a.ID != tp.AssignmentID {
			continue
		}

		var found bool
		for i := range a.Progress {
			if a.Progress[i].TaskID == tp.TaskID {
				a.Progress[i] = tp
				found = true
			}
		}
		if !found {
			a.Progress = append(a.Progress, tp)
		}

		var tasks []workflow.Task
		for _, wf := range repo.db.workflows {
			if wf.ID == a.WorkflowID {
				tasks = wf.Tasks
				break
			}
		}
		a.Status = workflow.DeriveAssignmentStatus(tasks, a.Progress)
		return a.Status, nil
	}
	return "", workflow.ErrNotFound
}
