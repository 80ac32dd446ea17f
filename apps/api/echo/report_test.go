package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/tests"
)

func createReport(t *testing.T, token, date string, videos []report.NewVideoEntry, quizzes []report.NewQuizEntry) report.DailyReport {
	t.Helper()
	rec := serve(httpTest{
		method: http.MethodPost, path: "/api/daily-reports", token: token,
		body: marchallObj(t, map[string]interface{}{
			"date":         date,
			"notes":        "  some notes ",
			"videoEntries": videos,
			"quizEntries":  quizzes,
		}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp DailyReportResponse
	unmarshal(t, rec, &resp)
	return resp.DailyReport
}

func reportIDs(t *testing.T, path, token string) []string {
	t.Helper()
	rec := serve(httpTest{path: path, token: token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DailyReportsResponse
	unmarshal(t, rec, &resp)
	ids := make([]string, 0, len(resp.DailyReports))
	for _, rpt := range resp.DailyReports {
		ids = append(ids, rpt.ID)
	}
	return ids
}

func Test_reportApi_create(t *testing.T) {
	resetDB()

	std := testutil.CreateStudent(t, usrRepo, "Student", "std@test.cd", "")
	other := testutil.CreateStudent(t, usrRepo, "Other", "other@test.cd", "")
	token := getToken(t, std)
	path := "/api/daily-reports"

	runHttpTests(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "entry title required", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"date":"2024-01-15","videoEntries":[{"title":"  ","duration":"30 minutes"}],"quizEntries":[{"title":"Quiz","score":-1}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"videoEntries[0].title": "this field is required",
				"quizEntries[0].score":  "score must be 0 or greater",
			}),
		},
		{
			name: "invalid date", method: http.MethodPost, path: path, token: token, body: []byte(`{"date":"15/01/2024"}`),
			wantCode: http.StatusBadRequest,
		},
	})

	t.Run("the caller owns the report", func(t *testing.T) {
		rec := serve(httpTest{
			method: http.MethodPost, path: path, token: token,
			body: []byte(`{"date":"2024-01-15","userId":"` + other.ID + `","videoEntries":[{"title":"React Hooks","duration":"45 minutes","category":"frontend"}]}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp DailyReportResponse
		unmarshal(t, rec, &resp)
		rpt := resp.DailyReport
		assert.NotEmpty(t, rpt.ID)
		assert.Equal(t, std.ID, rpt.UserID)
		assert.Equal(t, std.Public(), rpt.User)
		assert.Equal(t, "2024-01-15", rpt.Date.Format("2006-01-02"))
		require.Len(t, rpt.VideoEntries, 1)
		assert.Equal(t, std.ID, rpt.VideoEntries[0].UserID)
		assert.Equal(t, rpt.ID, rpt.VideoEntries[0].DailyReportID.String)
		assert.Empty(t, rpt.QuizEntries)
	})

	t.Run("entries are cleaned", func(t *testing.T) {
		rpt := createReport(t, token, "2024-01-16",
			nil,
			[]report.NewQuizEntry{{Title: " JS Basics ", Score: 8, TotalQuestions: 10, Category: " frontend "}},
		)
		assert.Equal(t, "some notes", rpt.Notes.String)
		require.Len(t, rpt.QuizEntries, 1)
		assert.Equal(t, "JS Basics", rpt.QuizEntries[0].Title)
		assert.Equal(t, "frontend", rpt.QuizEntries[0].Category)
		assert.Empty(t, rpt.VideoEntries)
	})
}

func Test_reportApi_query(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateStudent(t, usrRepo, "Bob", "bob@test.cd", "")
	aliceToken, bobToken, adminToken := getToken(t, alice), getToken(t, bob), getToken(t, admin)

	a1 := createReport(t, aliceToken, "2024-01-14", nil, nil)
	a2 := createReport(t, aliceToken, "2024-01-16", nil, nil)
	b1 := createReport(t, bobToken, "2024-01-15", nil, nil)

	t.Run("admins see everyone's, newest date first", func(t *testing.T) {
		assert.Equal(t, []string{a2.ID, b1.ID, a1.ID}, reportIDs(t, "/api/daily-reports", adminToken))
	})
	t.Run("admins may filter by user", func(t *testing.T) {
		assert.Equal(t, []string{b1.ID}, reportIDs(t, "/api/daily-reports?userId="+bob.ID, adminToken))
	})
	t.Run("students only see theirs", func(t *testing.T) {
		assert.Equal(t, []string{a2.ID, a1.ID}, reportIDs(t, "/api/daily-reports", aliceToken))
	})
	t.Run("students cannot filter by another user", func(t *testing.T) {
		assert.Equal(t, []string{b1.ID}, reportIDs(t, "/api/daily-reports?userId="+alice.ID, bobToken))
	})
	t.Run("no reports", func(t *testing.T) {
		rec := serve(httpTest{path: "/api/daily-reports?userId=" + admin.ID, token: adminToken})
		checkCodeAndData(t, httpTest{wantData: []byte(`{"dailyReports":[]}`)}, rec)
	})
}

func Test_reportApi_retrieve(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	alice := testutil.CreateStudent(t, usrRepo, "Alice", "alice@test.cd", "")
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd", "", user.RoleStudent, user.StatusActive)
	aliceToken := getToken(t, alice)

	rpt := createReport(t, aliceToken, "2024-01-15",
		[]report.NewVideoEntry{{Title: "Go tour", Duration: "1 hour"}},
		[]report.NewQuizEntry{{Title: "Go quiz", Score: 9, TotalQuestions: 10}},
	)
	path := "/api/daily-reports/" + rpt.ID
	notFound := marchallObj(t, httpErr{Error: "Daily report not found"})

	runHttpTests(t, []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized},
		{name: "unknown id", path: "/api/daily-reports/nope", token: aliceToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "someone else's", path: path, token: getToken(t, bob), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "owner", path: path, token: aliceToken, wantData: marchallObj(t, DailyReportResponse{DailyReport: rpt})},
		{name: "admin", path: path, token: getToken(t, admin), wantData: marchallObj(t, DailyReportResponse{DailyReport: rpt})},
	})
}
