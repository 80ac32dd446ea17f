package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
)

const (
	reportQuery = `SELECT r.id, r.user_id, r.date, r.notes, r.created_at,
		u.name AS user_name, u.email AS user_email
		FROM daily_reports r JOIN users u ON u.id = r.user_id`
	videoQuery = `SELECT v.id, v.title, v.duration, v.category, v.user_id, v.daily_report_id, v.created_at,
		u.name AS user_name
		FROM video_entries v JOIN users u ON u.id = v.user_id`
	quizQuery = `SELECT q.id, q.title, q.score, q.total_questions, q.category, q.user_id, q.daily_report_id,
		q.created_at, u.name AS user_name
		FROM quiz_entries q JOIN users u ON u.id = q.user_id`
)

type reportRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Date      time.Time   `db:"date"`
	Notes     null.String `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
	UserName  string      `db:"user_name"`
	UserEmail string      `db:"user_email"`
}

func (row reportRow) toReport() report.DailyReport {
	return report.DailyReport{
		ID:           row.ID,
		UserID:       row.UserID,
		Date:         row.Date,
		Notes:        row.Notes,
		CreatedAt:    row.CreatedAt,
		User:         user.PublicUser{ID: row.UserID, Name: row.UserName, Email: row.UserEmail},
		VideoEntries: []report.VideoEntry{},
		QuizEntries:  []report.QuizEntry{},
	}
}

type reportRepository struct {
	db core.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db core.DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo reportRepository) CreateReport(ctx context.Context, rpt report.DailyReport) (report.DailyReport, error) {
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

	err := core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		const insertReport = `INSERT INTO daily_reports (id, user_id, date, notes, created_at)
			VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.ExecContext(ctx, insertReport, rpt.ID, rpt.UserID, rpt.Date.UTC(), rpt.Notes, rpt.CreatedAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting daily report")
		}

		const insertVideo = `INSERT INTO video_entries (id, title, duration, category, user_id, daily_report_id, created_at)
			VALUES (:id, :title, :duration, :category, :user_id, :daily_report_id, :created_at)`
		for _, ve := range rpt.VideoEntries {
			if _, err := sqlxNamedExec(ctx, tx, insertVideo, ve); err != nil {
				return errors.Wrap(err, "inserting video entry")
			}
		}

		const insertQuiz = `INSERT INTO quiz_entries
			(id, title, score, total_questions, category, user_id, daily_report_id, created_at)
			VALUES (:id, :title, :score, :total_questions, :category, :user_id, :daily_report_id, :created_at)`
		for _, qe := range rpt.QuizEntries {
			if _, err := sqlxNamedExec(ctx, tx, insertQuiz, qe); err != nil {
				return errors.Wrap(err, "inserting quiz entry")
			}
		}
		return nil
	})
	if err != nil {
		return report.DailyReport{}, err
	}
	return rpt, nil
}

func (repo reportRepository) GetReport(ctx context.Context, id string) (report.DailyReport, error) {
	var row reportRow
	if err := repo.db.GetContext(ctx, &row, reportQuery+` WHERE r.id = $1`, id); err != nil {
		return report.DailyReport{}, trapNoRowsErr(err, report.ErrNotFound, "selecting daily report")
	}
	rpts := []report.DailyReport{row.toReport()}
	if err := repo.attachEntries(ctx, rpts); err != nil {
		return report.DailyReport{}, err
	}
	return rpts[0], nil
}

func (repo reportRepository) QueryReports(ctx context.Context, scope report.Scope) ([]report.DailyReport, error) {
	q, args := reportQuery, []interface{}{}
	if !scope.All() {
		q += ` WHERE r.user_id = $1`
		args = append(args, scope.UserID)
	}
	q += ` ORDER BY r.date DESC, r.created_at DESC`

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting daily reports")
	}
	rpts := make([]report.DailyReport, 0, len(rows))
	for _, row := range rows {
		rpts = append(rpts, row.toReport())
	}
	if err := repo.attachEntries(ctx, rpts); err != nil {
		return nil, err
	}
	return rpts, nil
}

// attachEntries loads the video and quiz entries of rpts in two queries.
func (repo reportRepository) attachEntries(ctx context.Context, rpts []report.DailyReport) error {
	if len(rpts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rpts))
	idx := make(map[string]int, len(rpts))
	for i, rpt := range rpts {
		ids = append(ids, rpt.ID)
		idx[rpt.ID] = i
	}

	var videos []report.VideoEntry
	q := videoQuery + ` WHERE v.daily_report_id = ANY($1) ORDER BY v.created_at, v.id`
	if err := repo.db.SelectContext(ctx, &videos, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting video entries")
	}
	for _, ve := range videos {
		i := idx[ve.DailyReportID.String]
		rpts[i].VideoEntries = append(rpts[i].VideoEntries, ve)
	}

	var quizzes []report.QuizEntry
	q = quizQuery + ` WHERE q.daily_report_id = ANY($1) ORDER BY q.created_at, q.id`
	if err := repo.db.SelectContext(ctx, &quizzes, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "selecting quiz entries")
	}
	for _, qe := range quizzes {
		i := idx[qe.DailyReportID.String]
		rpts[i].QuizEntries = append(rpts[i].QuizEntries, qe)
	}
	return nil
}

func (repo reportRepository) QueryVideoEntries(ctx context.Context, scope report.Scope) ([]report.VideoEntry, error) {
	q, args := videoQuery, []interface{}{}
	if !scope.All() {
		q += ` WHERE v.user_id = $1`
		args = append(args, scope.UserID)
	}
	q += ` ORDER BY v.created_at DESC, v.id`

	videos := []report.VideoEntry{}
	if err := repo.db.SelectContext(ctx, &videos, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting video entries")
	}
	return videos, nil
}

func (repo reportRepository) QueryQuizEntries(ctx context.Context, scope report.Scope) ([]report.QuizEntry, error) {
	q, args := quizQuery, []interface{}{}
	if !scope.All() {
		q += ` WHERE q.user_id = $1`
		args = append(args, scope.UserID)
	}
	q += ` ORDER BY q.created_at DESC, q.id`

	quizzes := []report.QuizEntry{}
	if err := repo.db.SelectContext(ctx, &quizzes, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting quiz entries")
	}
	return quizzes, nil
}
