package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
)

const studentQuery = `SELECT u.id, u.name, u.email, u.department, u.supervisor, u.status, u.created_at,
	(SELECT count(*) FROM daily_reports r WHERE r.user_id = u.id) AS daily_reports,
	(SELECT count(*) FROM video_entries v WHERE v.user_id = u.id) AS videos_watched,
	(SELECT count(*) FROM quiz_entries q WHERE q.user_id = u.id) AS quizzes_completed
	FROM users u WHERE u.role = 'student'`

type studentRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	Department null.String `db:"department"`
	Supervisor null.String `db:"supervisor"`
	Status     string      `db:"status"`
	CreatedAt  time.Time   `db:"created_at"`
	student.Stats
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Department: row.Department,
		StartDate:  core.FormatDate(row.CreatedAt),
		Supervisor: row.Supervisor,
		Status:     row.Status,
		Stats:      row.Stats,
		CreatedAt:  row.CreatedAt,
	}
}

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DB) student.Repository {
	return &studentRepository{db: db}
}

// orderBy renders ordering; fields are trusted columns (see student.CleanOrdering).
func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, "u."+ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func (repo studentRepository) QueryStudents(ctx context.Context, ordering []core.DBOrdering) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, studentQuery+orderBy(ordering)); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, studentQuery+` AND u.id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) CountStudents(ctx context.Context, status string) (int, error) {
	q, args := `SELECT count(*) FROM users WHERE role = $1`, []interface{}{user.RoleStudent}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	var n int
	if err := repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return n, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	return core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		var exists bool
		const check = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'student')`
		if err := tx.GetContext(ctx, &exists, check, id); err != nil {
			return errors.Wrap(err, "checking student")
		}
		if !exists {
			return student.ErrNotFound
		}

		// children first; assignment_tasks cascade with their assignment
		for _, q := range []string{
			`DELETE FROM quiz_entries WHERE user_id = $1`,
			`DELETE FROM video_entries WHERE user_id = $1`,
			`DELETE FROM daily_reports WHERE user_id = $1`,
			`DELETE FROM workflow_assignments WHERE user_id = $1`,
			`DELETE FROM users WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return errors.Wrapf(err, "deleting student: %s", q)
			}
		}
		return nil
	})
}
