package workflow

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
)

// DeriveStatus computes an assignment status from its task completion.
// A workflow without tasks never leaves not-started.
func DeriveStatus(completed, total int) string {
	switch {
	case total > 0 && completed >= total:
		return StatusCompleted
	case completed > 0:
		return StatusInProgress
	}
	return StatusNotStarted
}

// DeriveAssignmentStatus derives an assignment status from its progress on tasks.
func DeriveAssignmentStatus(tasks []Task, progress []TaskProgress) string {
	return DeriveStatus(countCompleted(tasks, progress), len(tasks))
}

// IsOverdue reports whether the due date has passed on an unfinished assignment.
func IsOverdue(dueDate null.Time, status string, now time.Time) bool {
	return dueDate.Valid && status != StatusCompleted && now.After(dueDate.Time)
}

// countCompleted counts the completed tasks of progress that still exist in tasks.
func countCompleted(tasks []Task, progress []TaskProgress) int {
	done := completedSet(progress)
	var n int
	for _, t := range tasks {
		if done[t.ID] {
			n++
		}
	}
	return n
}

func completedSet(progress []TaskProgress) map[string]bool {
	done := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Completed {
			done[p.TaskID] = true
		}
	}
	return done
}

// withCounts fills the task counters of every assignment.
func withCounts(wf Workflow) Workflow {
	for i := range wf.Assignments {
		a := &wf.Assignments[i]
		a.TotalTasks = len(wf.Tasks)
		a.CompletedTasks = countCompleted(wf.Tasks, a.Progress)
	}
	return wf
}

// ToStudentWorkflow shapes an assignment for its assignee.
// Tasks are the shared definitions; completion comes from the assignment's own progress.
func ToStudentWorkflow(aw AssignedWorkflow, now time.Time) StudentWorkflow {
	wf, a := aw.Workflow, aw.Assignment

	progress := make(map[string]TaskProgress, len(a.Progress))
	for _, p := range a.Progress {
		progress[p.TaskID] = p
	}

	tasks := make([]StudentTask, 0, len(wf.Tasks))
	var completed int
	for _, t := range wf.Tasks {
		st := StudentTask{
			ID:             t.ID,
			Title:          t.Title,
			Type:           t.Type,
			Score:          t.Score,
			TotalQuestions: t.TotalQuestions,
			Duration:       t.Duration,
		}
		if p, ok := progress[t.ID]; ok && p.Completed {
			st.Completed = true
			completed++
			if p.Score.Valid {
				st.Score = p.Score
			}
		}
		tasks = append(tasks, st)
	}

	return StudentWorkflow{
		ID:             wf.ID,
		AssignmentID:   a.ID,
		Title:          wf.Title,
		Description:    wf.Description,
		Category:       wf.Category,
		Status:         a.Status,
		Overdue:        IsOverdue(wf.DueDate, a.Status, now),
		DueDate:        wf.DueDate,
		AssignedAt:     a.AssignedAt,
		CompletedTasks: completed,
		TotalTasks:     len(tasks),
		CompletionRate: core.Percentage(completed, len(tasks)),
		Tasks:          tasks,
	}
}

// Bucket names the tab a status belongs to: active, upcoming or completed.
func Bucket(status string) string {
	switch status {
	case StatusInProgress:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return "upcoming"
}

type StudentBuckets struct {
	Active    []StudentWorkflow `json:"active"`
	Upcoming  []StudentWorkflow `json:"upcoming"`
	Completed []StudentWorkflow `json:"completed"`
}

// BucketStudentWorkflows puts every workflow in exactly one bucket.
func BucketStudentWorkflows(wfs []StudentWorkflow) StudentBuckets {
	b := StudentBuckets{
		Active:    []StudentWorkflow{},
		Upcoming:  []StudentWorkflow{},
		Completed: []StudentWorkflow{},
	}
	for _, wf := range wfs {
		switch Bucket(wf.Status) {
		case "active":
			b.Active = append(b.Active, wf)
		case "completed":
			b.Completed = append(b.Completed, wf)
		default:
			b.Upcoming = append(b.Upcoming, wf)
		}
	}
	return b
}

type Buckets struct {
	Active    []Workflow `json:"active"`
	Upcoming  []Workflow `json:"upcoming"`
	Completed []Workflow `json:"completed"`
}

// BucketWorkflows puts every workflow in exactly one bucket, by aggregate status.
func BucketWorkflows(wfs []Workflow) Buckets {
	b := Buckets{
		Active:    []Workflow{},
		Upcoming:  []Workflow{},
		Completed: []Workflow{},
	}
	for _, wf := range wfs {
		switch Bucket(wf.Status()) {
		case "active":
			b.Active = append(b.Active, wf)
		case "completed":
			b.Completed = append(b.Completed, wf)
		default:
			b.Upcoming = append(b.Upcoming, wf)
		}
	}
	return b
}
