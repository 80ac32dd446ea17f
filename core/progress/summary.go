package progress

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

type StudentSummary struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Department       null.String `json:"department"`
	Status           string      `json:"status"`
	DailyReports     int         `json:"dailyReports"`
	VideosWatched    int         `json:"videosWatched"`
	QuizzesCompleted int         `json:"quizzesCompleted"`
	AverageScore     *float64    `json:"averageScore"`
	WorkflowsDone    int         `json:"workflowsCompleted"`
	TotalWorkflows   int         `json:"totalWorkflows"`
	CompletionRate   *float64    `json:"completionRate"`
}

type Summary struct {
	TotalStudents         int      `json:"totalStudents"`
	ActiveStudents        int      `json:"activeStudents"`
	TotalReports          int      `json:"totalReports"`
	TotalVideos           int      `json:"totalVideos"`
	TotalQuizzes          int      `json:"totalQuizzes"`
	AverageScore          *float64 `json:"averageScore"`
	AverageCompletionRate *float64 `json:"averageCompletionRate"`
	WorkflowsCompleted    int      `json:"workflowsCompleted"`
	TotalWorkflows        int      `json:"totalWorkflows"`
}

type Report struct {
	Summary  Summary          `json:"summary"`
	Students []StudentSummary `json:"students"`
}

// scoreAcc accumulates quiz percentages.
type scoreAcc struct {
	sum float64
	n   int
}

func (acc *scoreAcc) add(qe report.QuizEntry) {
	if qe.TotalQuestions > 0 {
		acc.sum += float64(qe.Score) / float64(qe.TotalQuestions) * 100
		acc.n++
	}
}

func (acc scoreAcc) mean() *float64 {
	if acc.n == 0 {
		return nil
	}
	m := core.Round(acc.sum/float64(acc.n), 2)
	return &m
}

// taskAcc accumulates workflow assignments.
type taskAcc struct {
	completedTasks, totalTasks int
	completed, total           int
}

func (acc *taskAcc) add(a workflow.Assignment) {
	acc.completedTasks += a.CompletedTasks
	acc.totalTasks += a.TotalTasks
	acc.total++
	if a.Status == workflow.StatusCompleted {
		acc.completed++
	}
}

// Summarize computes per-student and overall figures.
// quizzes and workflows are expected to be restricted to students already; rows of other users are ignored.
// Workflows must carry their assignment counters.
func Summarize(students []student.Student, quizzes []report.QuizEntry, workflows []workflow.Workflow) Report {
	scores := make(map[string]*scoreAcc, len(students))
	tasks := make(map[string]*taskAcc, len(students))
	for _, s := range students {
		scores[s.ID] = new(scoreAcc)
		tasks[s.ID] = new(taskAcc)
	}

	var allScores scoreAcc
	for _, qe := range quizzes {
		if acc, ok := scores[qe.UserID]; ok {
			acc.add(qe)
			allScores.add(qe)
		}
	}

	var allTasks taskAcc
	for _, wf := range workflows {
		for _, a := range wf.Assignments {
			if acc, ok := tasks[a.UserID]; ok {
				acc.add(a)
				allTasks.add(a)
			}
		}
	}

	rpt := Report{
		Summary: Summary{
			TotalStudents:         len(students),
			AverageScore:          allScores.mean(),
			AverageCompletionRate: core.Percentage(allTasks.completedTasks, allTasks.totalTasks),
			WorkflowsCompleted:    allTasks.completed,
			TotalWorkflows:        allTasks.total,
		},
		Students: make([]StudentSummary, 0, len(students)),
	}
	for _, s := range students {
		if s.Status == user.StatusActive {
			rpt.Summary.ActiveStudents++
		}
		rpt.Summary.TotalReports += s.Stats.DailyReports
		rpt.Summary.TotalVideos += s.Stats.VideosWatched
		rpt.Summary.TotalQuizzes += s.Stats.QuizzesCompleted

		ta := tasks[s.ID]
		rpt.Students = append(rpt.Students, StudentSummary{
			ID:               s.ID,
			Name:             s.Name,
			Email:            s.Email,
			Department:       s.Department,
			Status:           s.Status,
			DailyReports:     s.Stats.DailyReports,
			VideosWatched:    s.Stats.VideosWatched,
			QuizzesCompleted: s.Stats.QuizzesCompleted,
			AverageScore:     scores[s.ID].mean(),
			WorkflowsDone:    ta.completed,
			TotalWorkflows:   ta.total,
			CompletionRate:   core.Percentage(ta.completedTasks, ta.totalTasks),
		})
	}
	return rpt
}
