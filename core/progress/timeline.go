package progress

import (
	"sort"
	"time"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
)

// Timeline entry types
const (
	TypeVideo = "video"
	TypeQuiz  = "quiz"
)

// TimelineEntry is one video or quiz activity; the fields of the other type are omitted.
type TimelineEntry struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Duration       *string `json:"duration,omitempty"`
	Score          *int    `json:"score,omitempty"`
	TotalQuestions *int    `json:"totalQuestions,omitempty"`
	StudentName    string  `json:"studentName"`

	createdAt time.Time
}

func fromVideo(ve report.VideoEntry) TimelineEntry {
	duration := ve.Duration
	return TimelineEntry{
		ID:          ve.ID,
		Date:        core.FormatDate(ve.CreatedAt),
		Type:        TypeVideo,
		Title:       ve.Title,
		Category:    ve.Category,
		Duration:    &duration,
		StudentName: ve.UserName,
		createdAt:   ve.CreatedAt,
	}
}

func fromQuiz(qe report.QuizEntry) TimelineEntry {
	score, total := qe.Score, qe.TotalQuestions
	return TimelineEntry{
		ID:             qe.ID,
		Date:           core.FormatDate(qe.CreatedAt),
		Type:           TypeQuiz,
		Title:          qe.Title,
		Category:       qe.Category,
		Score:          &score,
		TotalQuestions: &total,
		StudentName:    qe.UserName,
		createdAt:      qe.CreatedAt,
	}
}

// BuildTimeline merges videos and quizzes, latest date first.
// Same-day entries are ordered by creation time (latest first), then videos before quizzes
// in the order they were given.
func BuildTimeline(videos []report.VideoEntry, quizzes []report.QuizEntry) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(videos)+len(quizzes))
	for _, ve := range videos {
		entries = append(entries, fromVideo(ve))
	}
	for _, qe := range quizzes {
		entries = append(entries, fromQuiz(qe))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date // YYYY-MM-DD sorts lexically
		}
		return entries[i].createdAt.After(entries[j].createdAt)
	})
	return entries
}
