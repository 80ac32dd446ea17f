package report

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("Daily report not found")
)

type (
	Repository interface {
		// CreateReport inserts the report and its entries in one transaction, assigning their ids.
		CreateReport(ctx context.Context, rpt DailyReport) (DailyReport, error)
		// GetReport returns ErrNotFound if the report does not exist.
		GetReport(ctx context.Context, id string) (DailyReport, error)
		// QueryReports returns the reports in scope, newest date first, with owner & entries.
		QueryReports(ctx context.Context, scope Scope) ([]DailyReport, error)
		QueryVideoEntries(ctx context.Context, scope Scope) ([]VideoEntry, error)
		QueryQuizEntries(ctx context.Context, scope Scope) ([]QuizEntry, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()

	return &Service{repo: repo}
}

// Create files a report for owner; nothing in nr can change who owns it.
func (svc *Service) Create(ctx context.Context, owner user.User, nr NewDailyReport) (DailyReport, error) {
	now := time.Now().UTC()
	date := nr.Date.Time
	if date.IsZero() {
		date = now
	}

	rpt := DailyReport{
		UserID:       owner.ID,
		Date:         date,
		Notes:        null.NewString(nr.Notes, nr.Notes != ""),
		CreatedAt:    now,
		User:         owner.Public(),
		VideoEntries: make([]VideoEntry, 0, len(nr.VideoEntries)),
		QuizEntries:  make([]QuizEntry, 0, len(nr.QuizEntries)),
	}
	for _, ve := range nr.VideoEntries {
		rpt.VideoEntries = append(rpt.VideoEntries, VideoEntry{
			Title:     ve.Title,
			Duration:  ve.Duration,
			Category:  ve.Category,
			UserID:    owner.ID,
			CreatedAt: now,
			UserName:  owner.Name,
		})
	}
	for _, qe := range nr.QuizEntries {
		rpt.QuizEntries = append(rpt.QuizEntries, QuizEntry{
			Title:          qe.Title,
			Score:          qe.Score,
			TotalQuestions: qe.TotalQuestions,
			Category:       qe.Category,
			UserID:         owner.ID,
			CreatedAt:      now,
			UserName:       owner.Name,
		})
	}

	rpt, err := svc.repo.CreateReport(ctx, rpt)
	if err != nil {
		return DailyReport{}, errors.Wrap(err, "creating daily report")
	}
	return rpt, nil
}

// GetByID returns ErrNotFound when the report is out of scope.
func (svc *Service) GetByID(ctx context.Context, scope Scope, id string) (DailyReport, error) {
	rpt, err := svc.repo.GetReport(ctx, id)
	if err != nil {
		return DailyReport{}, err
	}
	if !scope.All() && rpt.UserID != scope.UserID {
		return DailyReport{}, ErrNotFound
	}
	return rpt, nil
}

func (svc *Service) Query(ctx context.Context, scope Scope) ([]DailyReport, error) {
	return svc.repo.QueryReports(ctx, scope)
}

func (svc *Service) QueryVideoEntries(ctx context.Context, scope Scope) ([]VideoEntry, error) {
	return svc.repo.QueryVideoEntries(ctx, scope)
}

func (svc *Service) QueryQuizEntries(ctx context.Context, scope Scope) ([]QuizEntry, error) {
	return svc.repo.QueryQuizEntries(ctx, scope)
}
