package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/internhub/core/reference"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

// Repositories are the repositories of one storage engine.
type Repositories struct {
	User      user.Repository
	Student   student.Repository
	Report    report.Repository
	Workflow  workflow.Repository
	Reference reference.Repository
}

// RunRepositoryTests checks the behaviour every storage engine shares.
// reset must empty the users, reports & workflows tables.
func RunRepositoryTests(t *testing.T, repos Repositories, reset func()) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		reset()
		usr := CreateStudent(t, repos.User, "John Doe", "john@test.cd", "Backend")

		_, err := repos.User.CreateUser(ctx, user.User{Name: "Other", Email: "john@test.cd", Role: user.RoleStudent, Status: user.StatusActive})
		assert.Equal(t, user.ErrEmailExists, err)

		got, err := repos.User.GetUserByEmail(ctx, "john@test.cd")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.Equal(t, null.StringFrom("Backend"), got.Department)

		exists, err := repos.User.EmailExists(ctx, "john@test.cd", usr.ID)
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = repos.User.EmailExists(ctx, "john@test.cd")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = repos.User.GetUserByID(ctx, uuid.New().String())
		assert.Equal(t, user.ErrNotFound, err)
		_, err = repos.User.UpdateUser(ctx, user.User{ID: uuid.New().String(), Email: "x@test.cd"})
		assert.Equal(t, user.ErrNotFound, err)

		got.Status = user.StatusCompleted
		got.Supervisor = null.StringFrom("Dr. Smith")
		_, err = repos.User.UpdateUser(ctx, got)
		require.NoError(t, err)
		got, err = repos.User.GetUserByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, user.StatusCompleted, got.Status)
		assert.Equal(t, null.StringFrom("Dr. Smith"), got.Supervisor)
	})

	t.Run("reports", func(t *testing.T) {
		reset()
		john := CreateStudent(t, repos.User, "John Doe", "john@test.cd", "")
		jane := CreateStudent(t, repos.User, "Jane Doe", "jane@test.cd", "")

		day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		rpt := createReport(t, repos.Report, john, day)
		createReport(t, repos.Report, jane, day.AddDate(0, 0, 1))

		got, err := repos.Report.GetReport(ctx, rpt.ID)
		require.NoError(t, err)
		assert.Equal(t, john.ID, got.User.ID)
		assert.Len(t, got.VideoEntries, 1)
		assert.Len(t, got.QuizEntries, 1)
		_, err = repos.Report.GetReport(ctx, uuid.New().String())
		assert.Equal(t, report.ErrNotFound, err)

		all, err := repos.Report.QueryReports(ctx, report.Scope{})
		require.NoError(t, err)
		if assert.Len(t, all, 2) {
			assert.Equal(t, jane.ID, all[0].UserID, "newest date first")
		}
		mine, err := repos.Report.QueryReports(ctx, report.Scope{UserID: john.ID})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		quizzes, err := repos.Report.QueryQuizEntries(ctx, report.Scope{UserID: john.ID})
		require.NoError(t, err)
		if assert.Len(t, quizzes, 1) {
			assert.Equal(t, "John Doe", quizzes[0].UserName)
			assert.Equal(t, 8, quizzes[0].Score)
		}
		videos, err := repos.Report.QueryVideoEntries(ctx, report.Scope{})
		require.NoError(t, err)
		assert.Len(t, videos, 2)
	})

	t.Run("workflows", func(t *testing.T) {
		reset()
		admin := CreateAdmin(t, repos.User, "Admin", "admin@test.cd", "")
		john := CreateStudent(t, repos.User, "John Doe", "john@test.cd", "")
		jane := CreateStudent(t, repos.User, "Jane Doe", "jane@test.cd", "")

		wf := createWorkflow(t, repos.Workflow, admin, john, jane)
		require.Len(t, wf.Tasks, 2)
		require.Len(t, wf.Assignments, 2)

		aw, err := repos.Workflow.GetUserAssignment(ctx, john.ID, wf.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusNotStarted, aw.Assignment.Status)
		assert.Equal(t, "Video", aw.Workflow.Tasks[0].Title, "tasks by order")

		tp := workflow.TaskProgress{
			AssignmentID: aw.Assignment.ID,
			TaskID:       wf.Tasks[1].ID,
			Completed:    true,
			Score:        null.IntFrom(9),
			CompletedAt:  null.TimeFrom(time.Now().UTC()),
		}
		status, err := repos.Workflow.SaveTaskProgress(ctx, tp)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusInProgress, status)

		aws, err := repos.Workflow.QueryUserAssignments(ctx, john.ID)
		require.NoError(t, err)
		if assert.Len(t, aws, 1) {
			a := aws[0].Assignment
			assert.Equal(t, workflow.StatusInProgress, a.Status)
			var done int
			for _, p := range a.Progress {
				if p.Completed {
					done++
					assert.Equal(t, wf.Tasks[1].ID, p.TaskID)
					assert.Equal(t, null.IntFrom(9), p.Score)
				}
			}
			assert.Equal(t, 1, done)
		}

		// jane's progress is untouched
		aw, err = repos.Workflow.GetUserAssignment(ctx, jane.ID, wf.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusNotStarted, aw.Assignment.Status)

		_, err = repos.Workflow.GetUserAssignment(ctx, admin.ID, wf.ID)
		assert.Equal(t, workflow.ErrNotFound, err)
		_, err = repos.Workflow.SaveTaskProgress(ctx, workflow.TaskProgress{AssignmentID: uuid.New().String(), TaskID: wf.Tasks[0].ID})
		assert.Equal(t, workflow.ErrNotFound, err)

		// concurrent completions of every task end up completed
		aw, err = repos.Workflow.GetUserAssignment(ctx, jane.ID, wf.ID)
		require.NoError(t, err)
		var g errgroup.Group
		for _, task := range wf.Tasks {
			tp := workflow.TaskProgress{AssignmentID: aw.Assignment.ID, TaskID: task.ID, Completed: true}
			g.Go(func() error {
				_, err := repos.Workflow.SaveTaskProgress(ctx, tp)
				return err
			})
		}
		require.NoError(t, g.Wait())
		aw, err = repos.Workflow.GetUserAssignment(ctx, jane.ID, wf.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusCompleted, aw.Assignment.Status)

		// un-completing re-derives too
		status, err = repos.Workflow.SaveTaskProgress(ctx, workflow.TaskProgress{AssignmentID: aw.Assignment.ID, TaskID: wf.Tasks[0].ID})
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusInProgress, status)

		wfs, err := repos.Workflow.QueryWorkflows(ctx)
		require.NoError(t, err)
		if assert.Len(t, wfs, 1) {
			assert.Len(t, wfs[0].Assignments, 2)
			assert.Equal(t, workflow.StatusInProgress, wfs[0].Status())
		}
	})

	t.Run("students", func(t *testing.T) {
		reset()
		admin := CreateAdmin(t, repos.User, "Admin", "admin@test.cd", "")
		john := CreateStudent(t, repos.User, "John Doe", "john@test.cd", "Backend", time.Now().Add(-time.Hour))
		jane := CreateStudent(t, repos.User, "Jane Doe", "jane@test.cd", "Frontend")
		createReport(t, repos.Report, john, time.Now())
		createWorkflow(t, repos.Workflow, admin, john, jane)

		students, err := repos.Student.QueryStudents(ctx, student.DefaultOrdering)
		require.NoError(t, err)
		if assert.Len(t, students, 2, "admins are not students") {
			assert.Equal(t, jane.ID, students[0].ID, "newest first")
			assert.Equal(t, student.Stats{DailyReports: 1, VideosWatched: 1, QuizzesCompleted: 1}, students[1].Stats)
		}

		n, err := repos.Student.CountStudents(ctx, user.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, err = repos.Student.GetStudent(ctx, admin.ID)
		assert.Equal(t, student.ErrNotFound, err)
		assert.Equal(t, student.ErrNotFound, repos.Student.DeleteStudent(ctx, admin.ID))

		require.NoError(t, repos.Student.DeleteStudent(ctx, john.ID))
		_, err = repos.User.GetUserByID(ctx, john.ID)
		assert.Equal(t, user.ErrNotFound, err)
		rpts, err := repos.Report.QueryReports(ctx, report.Scope{})
		require.NoError(t, err)
		assert.Empty(t, rpts)
		quizzes, err := repos.Report.QueryQuizEntries(ctx, report.Scope{})
		require.NoError(t, err)
		assert.Empty(t, quizzes)
		wfs, err := repos.Workflow.QueryWorkflows(ctx)
		require.NoError(t, err)
		if assert.Len(t, wfs, 1) {
			if assert.Len(t, wfs[0].Assignments, 1) {
				assert.Equal(t, jane.ID, wfs[0].Assignments[0].UserID)
			}
		}
	})

	t.Run("reference", func(t *testing.T) {
		cats, err := repos.Reference.QueryCategories(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(cats), len(reference.DefaultCategories))

		_, err = repos.Reference.CreateCategory(ctx, reference.Category{Name: "Something", Value: "frontend"})
		assert.Equal(t, reference.ErrCategoryExists, err)

		value := "cat-" + uuid.New().String()
		cat, err := repos.Reference.CreateCategory(ctx, reference.Category{Name: value, Value: value})
		require.NoError(t, err)
		assert.NotZero(t, cat.ID)
		_, err = repos.Reference.CreateCategory(ctx, reference.Category{Name: value, Value: value + "-2"})
		assert.Equal(t, reference.ErrCategoryExists, err)

		name := "Dept " + uuid.New().String()
		require.NoError(t, repos.Reference.AddName(ctx, reference.Departments, name))
		assert.Equal(t, reference.ErrDepartmentExists, repos.Reference.AddName(ctx, reference.Departments, name))
		depts, err := repos.Reference.QueryNames(ctx, reference.Departments)
		require.NoError(t, err)
		assert.Contains(t, depts, name)
		assert.Equal(t, name, depts[len(depts)-1], "insertion order")

		sups, err := repos.Reference.QueryNames(ctx, reference.Supervisors)
		require.NoError(t, err)
		assert.NotContains(t, sups, name)
	})
}

func createReport(t *testing.T, repo report.Repository, owner user.User, date time.Time) report.DailyReport {
	now := time.Now().UTC()
	rpt, err := repo.CreateReport(context.Background(), report.DailyReport{
		UserID:    owner.ID,
		Date:      date,
		Notes:     null.StringFrom("notes"),
		CreatedAt: now,
		VideoEntries: []report.VideoEntry{
			{Title: "Hooks", Duration: "45 minutes", Category: "frontend", UserID: owner.ID, CreatedAt: now},
		},
		QuizEntries: []report.QuizEntry{
			{Title: "Hooks quiz", Score: 8, TotalQuestions: 10, Category: "frontend", UserID: owner.ID, CreatedAt: now},
		},
	})
	if err != nil {
		t.Fatalf("CreateReport() failed: %v", err)
	}
	return rpt
}

func createWorkflow(t *testing.T, repo workflow.Repository, admin user.User, assignees ...user.User) workflow.Workflow {
	now := time.Now().UTC()
	wf := workflow.Workflow{
		Title:      "React basics",
		Category:   "frontend",
		AssignedBy: admin.ID,
		CreatedAt:  now,
		Tasks: []workflow.Task{
			{Title: "Video", Type: workflow.TaskVideo, Order: 0, Duration: null.StringFrom("1h")},
			{Title: "Quiz", Type: workflow.TaskQuiz, Order: 1, TotalQuestions: null.IntFrom(10)},
		},
	}
	for _, usr := range assignees {
		wf.Assignments = append(wf.Assignments, workflow.Assignment{
			UserID:     usr.ID,
			Status:     workflow.StatusNotStarted,
			AssignedAt: now,
		})
	}
	wf, err := repo.CreateWorkflow(context.Background(), wf)
	if err != nil {
		t.Fatalf("CreateWorkflow() failed: %v", err)
	}
	return wf
}
