package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

const (
	workflowQuery   = `SELECT id, title, description, category, due_date, assigned_by, created_at FROM workflows`
	taskQuery       = `SELECT id, workflow_id, title, type, position, score, total_questions, duration FROM workflow_tasks`
	assignmentQuery = `SELECT a.id, a.workflow_id, a.user_id, a.status, a.assigned_at,
		u.name AS user_name, u.email AS user_email
		FROM workflow_assignments a JOIN users u ON u.id = a.user_id`
	progressQuery = `SELECT assignment_id, task_id, completed, score, completed_at FROM assignment_tasks`
)

type workflowRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	DueDate     null.Time `db:"due_date"`
	AssignedBy  string    `db:"assigned_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row workflowRow) toWorkflow() workflow.Workflow {
	return workflow.Workflow{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		DueDate:     row.DueDate,
		AssignedBy:  row.AssignedBy,
		CreatedAt:   row.CreatedAt,
		Tasks:       []workflow.Task{},
		Assignments: []workflow.Assignment{},
	}
}

type assignmentRow struct {
	ID         string    `db:"id"`
	WorkflowID string    `db:"workflow_id"`
	UserID     string    `db:"user_id"`
	Status     string    `db:"status"`
	AssignedAt time.Time `db:"assigned_at"`
	UserName   string    `db:"user_name"`
	UserEmail  string    `db:"user_email"`
}

func (row assignmentRow) toAssignment() workflow.Assignment {
	return workflow.Assignment{
		ID:         row.ID,
		WorkflowID: row.WorkflowID,
		UserID:     row.UserID,
		Status:     row.Status,
		AssignedAt: row.AssignedAt,
		User:       user.PublicUser{ID: row.UserID, Name: row.UserName, Email: row.UserEmail},
		Progress:   []workflow.TaskProgress{},
	}
}

type workflowRepository struct {
	db core.DB
}

var _ workflow.Repository = (*workflowRepository)(nil) // interface compliance check

func NewWorkflowRepository(db core.DB) workflow.Repository {
	return &workflowRepository{db: db}
}

func (repo workflowRepository) CreateWorkflow(ctx context.Context, wf workflow.Workflow) (workflow.Workflow, error) {
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
	}

	err := core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		const insertWorkflow = `INSERT INTO workflows (id, title, description, category, due_date, assigned_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := tx.ExecContext(ctx, insertWorkflow,
			wf.ID, wf.Title, wf.Description, wf.Category, wf.DueDate, wf.AssignedBy, wf.CreatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "inserting workflow")
		}

		const insertTask = `INSERT INTO workflow_tasks
			(id, workflow_id, title, type, position, score, total_questions, duration)
			VALUES (:id, :workflow_id, :title, :type, :position, :score, :total_questions, :duration)`
		for _, t := range wf.Tasks {
			if _, err = sqlxNamedExec(ctx, tx, insertTask, t); err != nil {
				return errors.Wrap(err, "inserting workflow task")
			}
		}

		const insertAssignment = `INSERT INTO workflow_assignments (id, workflow_id, user_id, status, assigned_at)
			VALUES ($1, $2, $3, $4, $5)`
		const insertProgress = `INSERT INTO assignment_tasks (assignment_id, task_id, completed)
			VALUES (:assignment_id, :task_id, :completed)`
		for _, a := range wf.Assignments {
			if _, err = tx.ExecContext(ctx, insertAssignment, a.ID, a.WorkflowID, a.UserID, a.Status, a.AssignedAt.UTC()); err != nil {
				return errors.Wrap(err, "inserting workflow assignment")
			}
			for _, p := range a.Progress {
				if _, err = sqlxNamedExec(ctx, tx, insertProgress, p); err != nil {
					return errors.Wrap(err, "inserting task progress")
				}
			}
		}
		return nil
	})
	if err != nil {
		return workflow.Workflow{}, err
	}
	return wf, nil
}

func (repo workflowRepository) QueryWorkflows(ctx context.Context) ([]workflow.Workflow, error) {
	var rows []workflowRow
	if err := repo.db.SelectContext(ctx, &rows, workflowQuery+` ORDER BY created_at DESC, id`); err != nil {
		return nil, errors.Wrap(err, "selecting workflows")
	}
	wfs := make([]workflow.Workflow, 0, len(rows))
	for _, row := range rows {
		wfs = append(wfs, row.toWorkflow())
	}
	if err := repo.attachTasks(ctx, wfs); err != nil {
		return nil, err
	}

	var asgRows []assignmentRow
	q := assignmentQuery + ` ORDER BY a.assigned_at, u.name, a.id`
	if err := repo.db.SelectContext(ctx, &asgRows, q); err != nil {
		return nil, errors.Wrap(err, "selecting workflow assignments")
	}
	asgs := make([]workflow.Assignment, 0, len(asgRows))
	for _, row := range asgRows {
		asgs = append(asgs, row.toAssignment())
	}
	if err := repo.attachProgress(ctx, asgs); err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(wfs))
	for i, wf := range wfs {
		idx[wf.ID] = i
	}
	for _, a := range asgs {
		if i, ok := idx[a.WorkflowID]; ok {
			wfs[i].Assignments = append(wfs[i].Assignments, a)
		}
	}
	return wfs, nil
}

func (repo workflowRepository) QueryUserAssignments(ctx context.Context, userID string) ([]workflow.AssignedWorkflow, error) {
	return repo.queryAssigned(ctx, `WHERE a.user_id = $1`, userID)
}

func (repo workflowRepository) GetUserAssignment(ctx context.Context, userID, workflowID string) (workflow.AssignedWorkflow, error) {
	aws, err := repo.queryAssigned(ctx, `WHERE a.user_id = $1 AND a.workflow_id = $2`, userID, workflowID)
	if err != nil {
		return workflow.AssignedWorkflow{}, err
	}
	if len(aws) == 0 {
		return workflow.AssignedWorkflow{}, workflow.ErrNotFound
	}
	return aws[0], nil
}

// queryAssigned loads the assignments matching where, with their workflow, newest workflow first.
func (repo workflowRepository) queryAssigned(ctx context.Context, where string, args ...interface{}) ([]workflow.AssignedWorkflow, error) {
	var asgRows []assignmentRow
	q := assignmentQuery + ` JOIN workflows w ON w.id = a.workflow_id ` + where + ` ORDER BY w.created_at DESC, w.id`
	if err := repo.db.SelectContext(ctx, &asgRows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting workflow assignments")
	}
	if len(asgRows) == 0 {
		return []workflow.AssignedWorkflow{}, nil
	}

	asgs := make([]workflow.Assignment, 0, len(asgRows))
	wfIDs := make([]string, 0, len(asgRows))
	for _, row := range asgRows {
		asgs = append(asgs, row.toAssignment())
		wfIDs = append(wfIDs, row.WorkflowID)
	}
	if err := repo.attachProgress(ctx, asgs); err != nil {
		return nil, err
	}

	var wfRows []workflowRow
	if err := repo.db.SelectContext(ctx, &wfRows, workflowQuery+` WHERE id = ANY($1)`, pq.Array(wfIDs)); err != nil {
		return nil, errors.Wrap(err, "selecting workflows")
	}
	wfs := make([]workflow.Workflow, 0, len(wfRows))
	for _, row := range wfRows {
		wfs = append(wfs, row.toWorkflow())
	}
	if err := repo.attachTasks(ctx, wfs); err != nil {
		return nil, err
	}
	byID := make(map[string]workflow.Workflow, len(wfs))
	for _, wf := range wfs {
		byID[wf.ID] = wf
	}

	aws := make([]workflow.AssignedWorkflow, 0, len(asgs))
	for _, a := range asgs {
		aws = append(aws, workflow.AssignedWorkflow{Assignment: a, Workflow: byID[a.WorkflowID]})
	}
	return aws, nil
}

// attachTasks loads the tasks of wfs, by order.
func (repo workflowRepository) attachTasks(ctx context.Context, wfs []workflow.Workflow) error {
	if len(wfs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(wfs))
	idx := make(map[string]int, len(wfs))
	for i, wf := range wfs {
		ids = append(ids, wf.ID)
		idx[wf.ID] = i
	}

	var tasks []workflow.Task
	q := taskQuery + ` WHERE workflow_id = ANY($1) ORDER BY workflow_id, position`
	if err := repo.db.SelectContext(ctx, &tasks, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting workflow tasks")
	}
	for _, t := range tasks {
		i := idx[t.WorkflowID]
		wfs[i].Tasks = append(wfs[i].Tasks, t)
	}
	return nil
}

func (repo workflowRepository) attachProgress(ctx context.Context, asgs []workflow.Assignment) error {
	if len(asgs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(asgs))
	idx := make(map[string]int, len(asgs))
	for i, a := range asgs {
		ids = append(ids, a.ID)
		idx[a.ID] = i
	}

	var progress []workflow.TaskProgress
	if err := repo.db.SelectContext(ctx, &progress, progressQuery+` WHERE assignment_id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting task progress")
	}
	for _, p := range progress {
		i := idx[p.AssignmentID]
		asgs[i].Progress = append(asgs[i].Progress, p)
	}
	return nil
}

func (repo workflowRepository) SaveTaskProgress(ctx context.Context, tp workflow.TaskProgress) (string, error) {
	var status string
	err := core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		// writers of the same assignment queue up here until commit
		var workflowID string
		const lock = `SELECT workflow_id FROM workflow_assignments WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &workflowID, lock, tp.AssignmentID); err != nil {
			return trapNoRowsErr(err, workflow.ErrNotFound, "locking assignment")
		}

		const upsert = `INSERT INTO assignment_tasks (assignment_id, task_id, completed, score, completed_at)
			VALUES (:assignment_id, :task_id, :completed, :score, :completed_at)
			ON CONFLICT (assignment_id, task_id) DO UPDATE
			SET completed = EXCLUDED.completed, score = EXCLUDED.score, completed_at = EXCLUDED.completed_at`
		if _, err := sqlxNamedExec(ctx, tx, upsert, tp); err != nil {
			return errors.Wrap(err, "saving task progress")
		}

		var counts struct {
			Total     int `db:"total"`
			Completed int `db:"completed"`
		}
		const count = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE p.completed) AS completed
			FROM workflow_tasks t
			LEFT JOIN assignment_tasks p ON p.task_id = t.id AND p.assignment_id = $1
			WHERE t.workflow_id = $2`
		if err := tx.GetContext(ctx, &counts, count, tp.AssignmentID, workflowID); err != nil {
			return errors.Wrap(err, "counting completed tasks")
		}
		status = workflow.DeriveStatus(counts.Completed, counts.Total)

		const update = `UPDATE workflow_assignments SET status = $1 WHERE id = $2`
		if _, err := tx.ExecContext(ctx, update, status, tp.AssignmentID); err != nil {
			return errors.Wrap(err, "updating assignment status")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}
