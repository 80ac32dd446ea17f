package echoapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internhub/core/progress"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
	"github.com/trezcool/internhub/tests"
)

func createWorkflow(t *testing.T, token, dueDate string, assignees ...string) workflow.Workflow {
	t.Helper()
	rec := serve(httpTest{
		method: http.MethodPost, path: "/api/workflows", token: token,
		body: marchallObj(t, map[string]interface{}{
			"title":       "Frontend Fundamentals",
			"description": "HTML, CSS and JS basics",
			"category":    "frontend",
			"dueDate":     dueDate,
			"tasks": []map[string]interface{}{
				{"title": "Watch HTML crash course", "type": "video", "duration": "60 minutes"},
				{"title": "JS quiz", "type": "quiz", "totalQuestions": 10},
			},
			"assignedUsers": assignees,
		}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Workflow workflow.Workflow `json:"workflow"`
	}
	unmarshal(t, rec, &resp)
	return resp.Workflow
}

func completeTask(t *testing.T, token, workflowID, taskID string, completed bool, score ...int) *httptest.ResponseRecorder {
	t.Helper()
	body := map[string]interface{}{"completed": completed}
	if len(score) > 0 {
		body["score"] = score[0]
	}
	return serve(httpTest{
		method: http.MethodPut, path: fmt.Sprintf("/api/workflows/%s/tasks/%s", workflowID, taskID),
		token: token, body: marchallObj(t, body),
	})
}

func studentWorkflow(t *testing.T, rec *httptest.ResponseRecorder) workflow.StudentWorkflow {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Workflow workflow.StudentWorkflow `json:"workflow"`
	}
	unmarshal(t, rec, &resp)
	return resp.Workflow
}

func Test_workflowApi_create(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	adminToken := getToken(t, admin)
	path := "/api/workflows"

	runHttpTests(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized},
		{
			name: "admin required", method: http.MethodPost, path: path, token: getToken(t, alice),
			body: []byte(`{"title":"T","category":"frontend"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "invalid fields", method: http.MethodPost, path: path, token: adminToken,
			body:     []byte(`{"title":" ","category":"frontend","tasks":[{"title":"Read","type":"reading"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title":         "this field is required",
				"tasks[0].type": "type must be one of [video quiz]",
			}),
		},
		{
			name: "unknown assignee", method: http.MethodPost, path: path, token: adminToken,
			body:     []byte(`{"title":"T","category":"frontend","assignedUsers":["` + alice.ID + `","nope"]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"assignedUsers[1]": `no student with id "nope"`}),
		},
		{
			name: "admins cannot be assigned", method: http.MethodPost, path: path, token: adminToken,
			body:     []byte(`{"title":"T","category":"frontend","assignedUsers":["` + admin.ID + `"]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"assignedUsers[0]": fmt.Sprintf("no student with id %q", admin.ID)}),
		},
	})

	t.Run("success", func(t *testing.T) {
		wf := createWorkflow(t, adminToken, "2030-06-30", alice.ID, alice.ID)
		assert.NotEmpty(t, wf.ID)
		assert.Equal(t, admin.ID, wf.AssignedBy)
		assert.Equal(t, "2030-06-30", wf.DueDate.Time.Format("2006-01-02"))

		require.Len(t, wf.Tasks, 2)
		for i, task := range wf.Tasks {
			assert.NotEmpty(t, task.ID)
			assert.Equal(t, i, task.Order)
		}
		assert.Equal(t, workflow.TaskVideo, wf.Tasks[0].Type)
		assert.Equal(t, "60 minutes", wf.Tasks[0].Duration.String)
		assert.Equal(t, 10, wf.Tasks[1].TotalQuestions.Int)

		require.Len(t, wf.Assignments, 1, "duplicate assignees are dropped")
		a := wf.Assignments[0]
		assert.Equal(t, alice.ID, a.UserID)
		assert.Equal(t, workflow.StatusNotStarted, a.Status)
		assert.Equal(t, 0, a.CompletedTasks)
		assert.Equal(t, 2, a.TotalTasks)
	})
}

func Test_workflowApi_query(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "")
	adminToken := getToken(t, admin)

	wf1 := createWorkflow(t, adminToken, "", alice.ID, bob.ID)
	wf2 := createWorkflow(t, adminToken, "", bob.ID)

	runHttpTests(t, []httpTest{
		{name: "auth required", path: "/api/workflows", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})

	t.Run("admins see every workflow, newest first", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows", token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Workflows []workflow.Workflow `json:"workflows"`
		}
		unmarshal(t, rec, &resp)
		require.Len(t, resp.Workflows, 2)
		assert.Equal(t, wf2.ID, resp.Workflows[0].ID)
		assert.Equal(t, wf1.ID, resp.Workflows[1].ID)
		assert.Len(t, resp.Workflows[1].Assignments, 2)
	})

	t.Run("students only see theirs", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows", token: getToken(t, alice)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Workflows []workflow.StudentWorkflow `json:"workflows"`
		}
		unmarshal(t, rec, &resp)
		require.Len(t, resp.Workflows, 1)
		got := resp.Workflows[0]
		assert.Equal(t, wf1.ID, got.ID)
		assert.Equal(t, workflow.StatusNotStarted, got.Status)
		assert.False(t, got.Overdue)
		require.NotNil(t, got.CompletionRate)
		assert.Equal(t, 0.0, *got.CompletionRate)
		require.Len(t, got.Tasks, 2)
		assert.False(t, got.Tasks[0].Completed)
	})

	t.Run("nothing assigned", func(t *testing.T) {
		lone := testutil.CreateStudent(t, usrRepo, "Lone", "lone@test.cd", "")
		rec := serve(httpTest{path: "/api/workflows", token: getToken(t, lone)})
		checkCodeAndData(t, httpTest{wantData: []byte(`{"workflows":[]}`)}, rec)
	})
}

func Test_workflowApi_completeTask(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "")
	carl := testutil.CreateUser(t, usrRepo, "Carl", "carl@test.cd", "", user.RoleStudent, user.StatusActive)
	adminToken, aliceToken, bobToken := getToken(t, admin), getToken(t, alice), getToken(t, bob)

	wf := createWorkflow(t, adminToken, "2020-01-31", alice.ID, bob.ID)
	video, quiz := wf.Tasks[0], wf.Tasks[1]
	path := fmt.Sprintf("/api/workflows/%s/tasks/%s", wf.ID, video.ID)

	runHttpTests(t, []httpTest{
		{name: "auth required", method: http.MethodPut, path: path, wantCode: http.StatusUnauthorized},
		{
			name: "completed required", method: http.MethodPut, path: path, token: aliceToken, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"completed": "this field is required"}),
		},
		{
			name: "not assigned", method: http.MethodPut, path: path, token: getToken(t, carl), body: []byte(`{"completed":true}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Workflow not found"}),
		},
		{
			name: "unknown workflow", method: http.MethodPut, path: "/api/workflows/nope/tasks/" + video.ID, token: aliceToken,
			body: []byte(`{"completed":true}`), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Workflow not found"}),
		},
		{
			name: "unknown task", method: http.MethodPut, path: fmt.Sprintf("/api/workflows/%s/tasks/nope", wf.ID), token: aliceToken,
			body: []byte(`{"completed":true}`), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Task not found"}),
		},
	})

	t.Run("first task starts the workflow", func(t *testing.T) {
		got := studentWorkflow(t, completeTask(t, aliceToken, wf.ID, video.ID, true))
		assert.Equal(t, workflow.StatusInProgress, got.Status)
		assert.Equal(t, 1, got.CompletedTasks)
		assert.Equal(t, 2, got.TotalTasks)
		assert.Equal(t, 50.0, *got.CompletionRate)
		assert.True(t, got.Overdue)
		assert.True(t, got.Tasks[0].Completed)
		assert.False(t, got.Tasks[1].Completed)
	})

	t.Run("last task completes it", func(t *testing.T) {
		got := studentWorkflow(t, completeTask(t, aliceToken, wf.ID, quiz.ID, true, 9))
		assert.Equal(t, workflow.StatusCompleted, got.Status)
		assert.Equal(t, 100.0, *got.CompletionRate)
		assert.False(t, got.Overdue, "completed workflows are never overdue")
		assert.Equal(t, 9, got.Tasks[1].Score.Int)
	})

	t.Run("completing twice is idempotent", func(t *testing.T) {
		got := studentWorkflow(t, completeTask(t, aliceToken, wf.ID, quiz.ID, true, 9))
		assert.Equal(t, 2, got.CompletedTasks)
		assert.Equal(t, workflow.StatusCompleted, got.Status)
	})

	t.Run("progress is per assignee", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows", token: bobToken})
		var resp struct {
			Workflows []workflow.StudentWorkflow `json:"workflows"`
		}
		unmarshal(t, rec, &resp)
		require.Len(t, resp.Workflows, 1)
		assert.Equal(t, workflow.StatusNotStarted, resp.Workflows[0].Status)
		assert.Equal(t, 0, resp.Workflows[0].CompletedTasks)
	})

	t.Run("admin view aggregates", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows", token: adminToken})
		var resp struct {
			Workflows []workflow.Workflow `json:"workflows"`
		}
		unmarshal(t, rec, &resp)
		require.Len(t, resp.Workflows, 1)
		got := resp.Workflows[0]
		assert.Equal(t, workflow.StatusInProgress, got.Status())
		for _, a := range got.Assignments {
			switch a.UserID {
			case alice.ID:
				assert.Equal(t, workflow.StatusCompleted, a.Status)
				assert.Equal(t, 2, a.CompletedTasks)
			case bob.ID:
				assert.Equal(t, workflow.StatusNotStarted, a.Status)
				assert.Equal(t, 0, a.CompletedTasks)
			}
		}
	})

	t.Run("summary counts completed workflows", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/reports/summary", token: adminToken})
		var rpt progress.Report
		unmarshal(t, rec, &rpt)
		assert.Equal(t, 1, rpt.Summary.WorkflowsCompleted)
		assert.Equal(t, 2, rpt.Summary.TotalWorkflows)
		require.NotNil(t, rpt.Summary.AverageCompletionRate)
		assert.Equal(t, 50.0, *rpt.Summary.AverageCompletionRate)
	})

	t.Run("un-completing a task goes back to in-progress", func(t *testing.T) {
		got := studentWorkflow(t, completeTask(t, aliceToken, wf.ID, video.ID, false))
		assert.Equal(t, workflow.StatusInProgress, got.Status)
		assert.Equal(t, 1, got.CompletedTasks)
		assert.False(t, got.Tasks[0].Completed)
		assert.True(t, got.Overdue)
	})
}

func Test_workflowApi_buckets(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "")
	adminToken, aliceToken := getToken(t, admin), getToken(t, alice)

	started := createWorkflow(t, adminToken, "", alice.ID, bob.ID)
	done := createWorkflow(t, adminToken, "", alice.ID)
	untouched := createWorkflow(t, adminToken, "", alice.ID)

	studentWorkflow(t, completeTask(t, aliceToken, started.ID, started.Tasks[0].ID, true))
	for _, task := range done.Tasks {
		studentWorkflow(t, completeTask(t, aliceToken, done.ID, task.ID, true))
	}

	t.Run("student", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows/buckets", token: aliceToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var b workflow.StudentBuckets
		unmarshal(t, rec, &b)
		require.Len(t, b.Active, 1)
		require.Len(t, b.Completed, 1)
		require.Len(t, b.Upcoming, 1)
		assert.Equal(t, started.ID, b.Active[0].ID)
		assert.Equal(t, done.ID, b.Completed[0].ID)
		assert.Equal(t, untouched.ID, b.Upcoming[0].ID)
	})

	t.Run("admin", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows/buckets", token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var b workflow.Buckets
		unmarshal(t, rec, &b)
		require.Len(t, b.Active, 1)
		require.Len(t, b.Completed, 1)
		require.Len(t, b.Upcoming, 1)
		assert.Equal(t, started.ID, b.Active[0].ID)
		assert.Equal(t, done.ID, b.Completed[0].ID)
	})

	t.Run("buckets follow the caller's own progress", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/workflows/buckets", token: getToken(t, bob)})
		var b workflow.StudentBuckets
		unmarshal(t, rec, &b)
		assert.Empty(t, b.Active)
		assert.Empty(t, b.Completed)
		require.Len(t, b.Upcoming, 1)
		assert.Equal(t, started.ID, b.Upcoming[0].ID)
	})
}
