package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internhub/core/progress"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/tests"
)

func timeline(t *testing.T, path, token string) []progress.TimelineEntry {
	t.Helper()
	rec := serve(httpTest{path: path, token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ProgressResponse
	unmarshal(t, rec, &resp)
	return resp.ProgressData
}

func Test_progressApi_timeline(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "")
	aliceToken, bobToken, adminToken := getToken(t, alice), getToken(t, bob), getToken(t, admin)

	createReport(t, aliceToken, "2024-01-15",
		[]report.NewVideoEntry{{Title: "React Hooks", Duration: "45 minutes", Category: "frontend"}},
		[]report.NewQuizEntry{{Title: "JS Basics", Score: 8, TotalQuestions: 10, Category: "frontend"}},
	)
	createReport(t, bobToken, "2024-01-15",
		[]report.NewVideoEntry{{Title: "SQL joins", Duration: "20 minutes", Category: "database"}},
		nil,
	)

	runHttpTests(t, []httpTest{
		{name: "auth required", path: "/api/progress", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})

	t.Run("students see their own activity, videos before quizzes", func(t *testing.T) {
		entries := timeline(t, "/api/progress", aliceToken)
		require.Len(t, entries, 2)

		video, quiz := entries[0], entries[1]
		assert.Equal(t, progress.TypeVideo, video.Type)
		assert.Equal(t, "React Hooks", video.Title)
		require.NotNil(t, video.Duration)
		assert.Equal(t, "45 minutes", *video.Duration)
		assert.Nil(t, video.Score)
		assert.Equal(t, "Alice", video.StudentName)

		assert.Equal(t, progress.TypeQuiz, quiz.Type)
		require.NotNil(t, quiz.Score)
		assert.Equal(t, 8, *quiz.Score)
		assert.Equal(t, 10, *quiz.TotalQuestions)
		assert.Nil(t, quiz.Duration)
	})
	t.Run("students cannot read someone else's", func(t *testing.T) {
		entries := timeline(t, "/api/progress?userId="+alice.ID, bobToken)
		require.Len(t, entries, 1)
		assert.Equal(t, "Bob", entries[0].StudentName)
	})
	t.Run("admins see everyone's", func(t *testing.T) {
		entries := timeline(t, "/api/progress", adminToken)
		assert.Len(t, entries, 3)
		for i := 1; i < len(entries); i++ {
			assert.GreaterOrEqual(t, entries[i-1].Date, entries[i].Date)
		}
	})
	t.Run("admins may filter", func(t *testing.T) {
		entries := timeline(t, "/api/progress?userId="+bob.ID, adminToken)
		require.Len(t, entries, 1)
		assert.Equal(t, "SQL joins", entries[0].Title)
	})
	t.Run("quiz fields are omitted from videos", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/progress?userId=" + bob.ID, token: adminToken})
		assert.NotContains(t, rec.Body.String(), "totalQuestions")
	})
}

func Test_progressApi_summary(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "Engineering")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "Design")
	testutil.CreateUser(t, usrRepo, "Idle", "idle@test.cd", "", user.RoleStudent, user.StatusInactive)
	aliceToken, adminToken := getToken(t, alice), getToken(t, admin)

	createReport(t, aliceToken, "2024-01-15",
		[]report.NewVideoEntry{{Title: "React Hooks"}},
		[]report.NewQuizEntry{
			{Title: "JS Basics", Score: 8, TotalQuestions: 10},
			{Title: "CSS", Score: 3, TotalQuestions: 4},
			{Title: "Empty quiz", Score: 0, TotalQuestions: 0},
		},
	)

	path := "/api/reports/summary"
	runHttpTests(t, []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized},
		{name: "admin required", path: path, token: aliceToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "unknown student", path: path + "?userId=nope", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found"}),
		},
	})

	t.Run("everyone", func(t *testing.T) {
		rec := serve(httpTest{path: path, token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rpt progress.Report
		unmarshal(t, rec, &rpt)
		assert.Equal(t, 3, rpt.Summary.TotalStudents)
		assert.Equal(t, 2, rpt.Summary.ActiveStudents)
		assert.Equal(t, 1, rpt.Summary.TotalReports)
		assert.Equal(t, 1, rpt.Summary.TotalVideos)
		assert.Equal(t, 3, rpt.Summary.TotalQuizzes)
		require.NotNil(t, rpt.Summary.AverageScore)
		assert.Equal(t, 77.5, *rpt.Summary.AverageScore) // (80 + 75) / 2, the 0-question quiz does not count
		assert.Nil(t, rpt.Summary.AverageCompletionRate)
		require.Len(t, rpt.Students, 3)

		for _, s := range rpt.Students {
			if s.ID == bob.ID {
				assert.Nil(t, s.AverageScore)
				assert.Nil(t, s.CompletionRate)
				assert.Zero(t, s.DailyReports)
			}
		}
	})

	t.Run("one student", func(t *testing.T) {
		rec := serve(httpTest{path: path + "?userId=" + alice.ID, token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rpt progress.Report
		unmarshal(t, rec, &rpt)
		assert.Equal(t, 1, rpt.Summary.TotalStudents)
		require.Len(t, rpt.Students, 1)
		assert.Equal(t, alice.ID, rpt.Students[0].ID)
		assert.Equal(t, 3, rpt.Students[0].QuizzesCompleted)
	})
}
