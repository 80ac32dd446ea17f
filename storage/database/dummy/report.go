package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(_ context.Context, rpt report.DailyReport) (report.DailyReport, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rpt.ID = uuid.New().String()
	rptID := null.StringFrom(rpt.ID)
	for i := range rpt.VideoEntries {
		rpt.VideoEntries[i].ID = uuid.New().String()
		rpt.VideoEntries[i].DailyReportID = rptID
	}
	for i := range rpt.QuizEntries {
		rpt.QuizEntries[i].ID = uuid.New().String()
		rpt.QuizEntries[i].DailyReportID = rptID
	}

	row := rpt
	row.VideoEntries, row.QuizEntries = nil, nil
	repo.db.reports = append(repo.db.reports, &row)
	repo.db.videos = append(repo.db.videos, rpt.VideoEntries...)
	repo.db.quizzes = append(repo.db.quizzes, rpt.QuizEntries...)
	return rpt, nil
}

// withEntries must be called with the lock held.
func (repo *reportRepository) withEntries(rpt report.DailyReport) report.DailyReport {
	if usr, ok := repo.db.users[rpt.UserID]; ok {
		rpt.User = user.PublicUser{ID: usr.ID, Name: usr.Name, Email: usr.Email}
	}
	rpt.VideoEntries = []report.VideoEntry{}
	rpt.QuizEntries = []report.QuizEntry{}
	for _, ve := range repo.db.videos {
		if ve.DailyReportID.String == rpt.ID {
			ve.UserName = repo.db.userName(ve.UserID)
			rpt.VideoEntries = append(rpt.VideoEntries, ve)
		}
	}
	for _, qe := range repo.db.quizzes {
		if qe.DailyReportID.String == rpt.ID {
			qe.UserName = repo.db.userName(qe.UserID)
			rpt.QuizEntries = append(rpt.QuizEntries, qe)
		}
	}
	return rpt
}

func (repo *reportRepository) GetReport(_ context.Context, id string) (report.DailyReport, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rpt := range repo.db.reports {
		if rpt.ID == id {
			return repo.withEntries(*rpt), nil
		}
	}
	return report.DailyReport{}, report.ErrNotFound
}

func (repo *reportRepository) QueryReports(_ context.Context, scope report.Scope) ([]report.DailyReport, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rpts := make([]report.DailyReport, 0, len(repo.db.reports))
	for _, rpt := range repo.db.reports {
		if scope.All() || rpt.UserID == scope.UserID {
			rpts = append(rpts, repo.withEntries(*rpt))
		}
	}
	sort.SliceStable(rpts, func(i, j int) bool {
		if !rpts[i].Date.Equal(rpts[j].Date) {
			return rpts[i].Date.After(rpts[j].Date)
		}
		return rpts[i].CreatedAt.After(rpts[j].CreatedAt)
	})
	return rpts, nil
}

func (repo *reportRepository) QueryVideoEntries(_ context.Context, scope report.Scope) ([]report.VideoEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	videos := []report.VideoEntry{}
	for _, ve := range repo.db.videos {
		if scope.All() || ve.UserID == scope.UserID {
			ve.UserName = repo.db.userName(ve.UserID)
			videos = append(videos, ve)
		}
	}
	return videos, nil
}

func (repo *reportRepository) QueryQuizEntries(_ context.Context, scope report.Scope) ([]report.QuizEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	quizzes := []report.QuizEntry{}
	for _, qe := range repo.db.quizzes {
		if scope.All() || qe.UserID == scope.UserID {
			qe.UserName = repo.db.userName(qe.UserID)
			quizzes = append(quizzes, qe)
		}
	}
	return quizzes, nil
}
