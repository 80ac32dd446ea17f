package report

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

type VideoEntry struct {
	ID            string      `json:"id" db:"id"`
	Title         string      `json:"title" db:"title"`
	Duration      string      `json:"duration" db:"duration"` // free text, e.g. "45 minutes"
	Category      string      `json:"category" db:"category"`
	UserID        string      `json:"userId" db:"user_id"`
	DailyReportID null.String `json:"dailyReportId" db:"daily_report_id"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UserName      string      `json:"-" db:"user_name"`
}

type QuizEntry struct {
	ID             string      `json:"id" db:"id"`
	Title          string      `json:"title" db:"title"`
	Score          int         `json:"score" db:"score"`
	TotalQuestions int         `json:"totalQuestions" db:"total_questions"`
	Category       string      `json:"category" db:"category"`
	UserID         string      `json:"userId" db:"user_id"`
	DailyReportID  null.String `json:"dailyReportId" db:"daily_report_id"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UserName       string      `json:"-" db:"user_name"`
}

type DailyReport struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Date         time.Time       `json:"date"`
	Notes        null.String     `json:"notes"`
	CreatedAt    time.Time       `json:"createdAt"`
	User         user.PublicUser `json:"user"`
	VideoEntries []VideoEntry    `json:"videoEntries"`
	QuizEntries  []QuizEntry     `json:"quizEntries"`
}

type NewVideoEntry struct {
	Title    string `json:"title" validate:"required,max=200"`
	Duration string `json:"duration" validate:"max=50"`
	Category string `json:"category" validate:"max=50"`
}

type NewQuizEntry struct {
	Title          string `json:"title" validate:"required,max=200"`
	Score          int    `json:"score" validate:"gte=0"`
	TotalQuestions int    `json:"totalQuestions" validate:"gte=0"`
	Category       string `json:"category" validate:"max=50"`
}

// NewDailyReport is a submission. The owner always is the caller, so there is no user field.
type NewDailyReport struct {
	Date         core.Date       `json:"date"`
	Notes        string          `json:"notes" validate:"max=5000"`
	VideoEntries []NewVideoEntry `json:"videoEntries" validate:"dive"`
	QuizEntries  []NewQuizEntry  `json:"quizEntries" validate:"dive"`
}

func (nr *NewDailyReport) Validate(validate *validator.Validate) error {
	nr.Notes = core.CleanString(nr.Notes)
	for i := range nr.VideoEntries {
		ve := &nr.VideoEntries[i]
		ve.Title = core.CleanString(ve.Title)
		ve.Duration = core.CleanString(ve.Duration)
		ve.Category = core.CleanString(ve.Category)
	}
	for i := range nr.QuizEntries {
		qe := &nr.QuizEntries[i]
		qe.Title = core.CleanString(qe.Title)
		qe.Category = core.CleanString(qe.Category)
	}
	return validate.Struct(nr)
}

// Scope restricts reads to the rows of one user; an empty UserID means everyone's.
type Scope struct {
	UserID string
}

func (s Scope) All() bool { return s.UserID == "" }

// NewScope resolves what caller may read: admins see everyone or the filtered user,
// anybody else only themselves, whatever the filter says.
func NewScope(caller user.User, userIDFilter string) Scope {
	if caller.IsAdmin() {
		return Scope{UserID: core.CleanString(userIDFilter)}
	}
	return Scope{UserID: caller.ID}
}
