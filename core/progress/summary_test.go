package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

func TestSummarize(t *testing.T) {
	students := []student.Student{
		{ID: "s1", Name: "John", Status: user.StatusActive, Stats: student.Stats{DailyReports: 2, VideosWatched: 3, QuizzesCompleted: 2}},
		{ID: "s2", Name: "Maria", Status: user.StatusInactive, Stats: student.Stats{DailyReports: 1}},
	}
	quizzes := []report.QuizEntry{
		{UserID: "s1", Score: 8, TotalQuestions: 10},
		{UserID: "s1", Score: 3, TotalQuestions: 4},
		{UserID: "s1", Score: 0, TotalQuestions: 0}, // ignored
		{UserID: "admin", Score: 1, TotalQuestions: 10},
	}
	workflows := []workflow.Workflow{
		{ID: "wf1", Assignments: []workflow.Assignment{
			{UserID: "s1", Status: workflow.StatusCompleted, CompletedTasks: 2, TotalTasks: 2},
			{UserID: "s2", Status: workflow.StatusNotStarted, CompletedTasks: 0, TotalTasks: 2},
		}},
		{ID: "wf2", Assignments: []workflow.Assignment{
			{UserID: "s1", Status: workflow.StatusInProgress, CompletedTasks: 1, TotalTasks: 4},
		}},
	}

	rpt := Summarize(students, quizzes, workflows)

	sum := rpt.Summary
	assert.Equal(t, 2, sum.TotalStudents)
	assert.Equal(t, 1, sum.ActiveStudents)
	assert.Equal(t, 3, sum.TotalReports)
	assert.Equal(t, 3, sum.TotalVideos)
	assert.Equal(t, 2, sum.TotalQuizzes)
	if assert.NotNil(t, sum.AverageScore) {
		assert.Equal(t, 77.5, *sum.AverageScore)
	}
	if assert.NotNil(t, sum.AverageCompletionRate) {
		assert.Equal(t, 37.5, *sum.AverageCompletionRate) // 3 of 8 tasks
	}
	assert.Equal(t, 1, sum.WorkflowsCompleted)
	assert.Equal(t, 3, sum.TotalWorkflows)

	if assert.Len(t, rpt.Students, 2) {
		john, maria := rpt.Students[0], rpt.Students[1]
		assert.Equal(t, "s1", john.ID)
		assert.Equal(t, 1, john.WorkflowsDone)
		assert.Equal(t, 2, john.TotalWorkflows)
		if assert.NotNil(t, john.CompletionRate) {
			assert.Equal(t, 50.0, *john.CompletionRate)
		}
		assert.Nil(t, maria.AverageScore)
		if assert.NotNil(t, maria.CompletionRate) {
			assert.Equal(t, 0.0, *maria.CompletionRate)
		}
	}
}

func TestSummarize_empty(t *testing.T) {
	rpt := Summarize(nil, nil, nil)
	assert.Zero(t, rpt.Summary.TotalStudents)
	assert.Nil(t, rpt.Summary.AverageScore)
	assert.Nil(t, rpt.Summary.AverageCompletionRate)
	assert.NotNil(t, rpt.Students)
}
