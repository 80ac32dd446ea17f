package workflow

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

// Task types
const (
	TaskVideo = "video"
	TaskQuiz  = "quiz"
)

// Assignment statuses
const (
	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

type Task struct {
	ID             string      `json:"id" db:"id"`
	WorkflowID     string      `json:"-" db:"workflow_id"`
	Title          string      `json:"title" db:"title"`
	Type           string      `json:"type" db:"type"`
	Order          int         `json:"order" db:"position"`
	Score          null.Int    `json:"score" db:"score"`
	TotalQuestions null.Int    `json:"totalQuestions" db:"total_questions"`
	Duration       null.String `json:"duration" db:"duration"`
}

// TaskProgress is the completion state of one task for one assignment.
type TaskProgress struct {
	AssignmentID string    `json:"-" db:"assignment_id"`
	TaskID       string    `json:"taskId" db:"task_id"`
	Completed    bool      `json:"completed" db:"completed"`
	Score        null.Int  `json:"score" db:"score"`
	CompletedAt  null.Time `json:"completedAt" db:"completed_at"`
}

type Assignment struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflowId"`
	UserID         string          `json:"userId"`
	Status         string          `json:"status"`
	AssignedAt     time.Time       `json:"assignedAt"`
	CompletedTasks int             `json:"completedTasks"`
	TotalTasks     int             `json:"totalTasks"`
	User           user.PublicUser `json:"user"`
	Progress       []TaskProgress  `json:"-"`
}

type Workflow struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	DueDate     null.Time    `json:"dueDate"`
	AssignedBy  string       `json:"assignedBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	Tasks       []Task       `json:"tasks"`
	Assignments []Assignment `json:"assignments"`
}

// Status aggregates the assignments: completed once every assignee is done,
// in-progress once anybody started, not-started otherwise (including no assignees).
func (wf Workflow) Status() string {
	if len(wf.Assignments) == 0 {
		return StatusNotStarted
	}
	var started, completed int
	for _, a := range wf.Assignments {
		switch a.Status {
		case StatusCompleted:
			completed++
		case StatusInProgress:
			started++
		}
	}
	switch {
	case completed == len(wf.Assignments):
		return StatusCompleted
	case completed > 0 || started > 0:
		return StatusInProgress
	}
	return StatusNotStarted
}

// MarshalJSON adds the aggregate status.
func (wf Workflow) MarshalJSON() ([]byte, error) {
	type alias Workflow
	return json.Marshal(struct {
		alias
		Status string `json:"status"`
	}{alias(wf), wf.Status()})
}

// AssignedWorkflow is one assignment with its workflow.
type AssignedWorkflow struct {
	Assignment Assignment
	Workflow   Workflow
}

type StudentTask struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Type           string      `json:"type"`
	Completed      bool        `json:"completed"`
	Score          null.Int    `json:"score"`
	TotalQuestions null.Int    `json:"totalQuestions"`
	Duration       null.String `json:"duration"`
}

// StudentWorkflow is the workflow as seen by one of its assignees.
type StudentWorkflow struct {
	ID             string        `json:"id"`
	AssignmentID   string        `json:"assignmentId"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       string        `json:"category"`
	Status         string        `json:"status"`
	Overdue        bool          `json:"overdue"`
	DueDate        null.Time     `json:"dueDate"`
	AssignedAt     time.Time     `json:"assignedAt"`
	CompletedTasks int           `json:"completedTasks"`
	TotalTasks     int           `json:"totalTasks"`
	CompletionRate *float64      `json:"completionRate"`
	Tasks          []StudentTask `json:"tasks"`
}

type NewTask struct {
	Title          string `json:"title" validate:"required,max=200"`
	Type           string `json:"type" validate:"required,oneof=video quiz"`
	Score          *int   `json:"score" validate:"omitempty,gte=0"`
	TotalQuestions *int   `json:"totalQuestions" validate:"omitempty,gte=0"`
	Duration       string `json:"duration" validate:"max=50"`
}

// NewWorkflow contains information needed to create and assign a new Workflow.
type NewWorkflow struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Description   string    `json:"description" validate:"max=5000"`
	Category      string    `json:"category" validate:"required,max=50"`
	DueDate       core.Date `json:"dueDate"`
	Tasks         []NewTask `json:"tasks" validate:"dive"`
	AssignedUsers []string  `json:"assignedUsers" validate:"dive,required"`
}

func (nw *NewWorkflow) Validate(validate *validator.Validate) error {
	nw.Title = core.CleanString(nw.Title)
	nw.Description = core.CleanString(nw.Description)
	nw.Category = core.CleanString(nw.Category)
	for i := range nw.Tasks {
		t := &nw.Tasks[i]
		t.Title = core.CleanString(t.Title)
		t.Type = core.CleanString(t.Type, true /* lower */)
		t.Duration = core.CleanString(t.Duration)
	}

	// drop duplicate assignees, keeping the first occurrence
	seen := make(map[string]bool, len(nw.AssignedUsers))
	ids := make([]string, 0, len(nw.AssignedUsers))
	for _, id := range nw.AssignedUsers {
		id = core.CleanString(id)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	nw.AssignedUsers = ids

	return validate.Struct(nw)
}

// TaskCompletion is sent by an assignee to (un)complete one task.
type TaskCompletion struct {
	Completed *bool `json:"completed" validate:"required"`
	Score     *int  `json:"score" validate:"omitempty,gte=0"`
}

func (tc TaskCompletion) Validate(validate *validator.Validate) error { return validate.Struct(tc) }
