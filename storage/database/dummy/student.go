package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// toStudent must be called with the lock held.
func (repo *studentRepository) toStudent(usr user.User) student.Student {
	s := student.FromUser(usr)
	for _, rpt := range repo.db.reports {
		if rpt.UserID == usr.ID {
			s.Stats.DailyReports++
		}
	}
	for _, ve := range repo.db.videos {
		if ve.UserID == usr.ID {
			s.Stats.VideosWatched++
		}
	}
	for _, qe := range repo.db.quizzes {
		if qe.UserID == usr.ID {
			s.Stats.QuizzesCompleted++
		}
	}
	return s
}

// compareStudents orders a and b by column, as the SQL repository does.
func compareStudents(a, b student.Student, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "department":
		return strings.Compare(a.Department.String, b.Department.String)
	case "supervisor":
		return strings.Compare(a.Supervisor.String, b.Supervisor.String)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	case "id":
		return strings.Compare(a.ID, b.ID)
	}
	return 0
}

func (repo *studentRepository) QueryStudents(_ context.Context, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if usr.IsStudent() {
			students = append(students, repo.toStudent(*usr))
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareStudents(students[i], students[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	usr, ok := repo.db.users[id]
	if !ok || !usr.IsStudent() {
		return student.Student{}, student.ErrNotFound
	}
	return repo.toStudent(*usr), nil
}

func (repo *studentRepository) CountStudents(_ context.Context, status string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, usr := range repo.db.users {
		if usr.IsStudent() && (status == "" || usr.Status == status) {
			n++
		}
	}
	return n, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.users[id]
	if !ok || !usr.IsStudent() {
		return student.ErrNotFound
	}

	quizzes := repo.db.quizzes[:0]
	for _, qe := range repo.db.quizzes {
		if qe.UserID != id {
			quizzes = append(quizzes, qe)
		}
	}
	repo.db.quizzes = quizzes

	videos := repo.db.videos[:0]
	for _, ve := range repo.db.videos {
		if ve.UserID != id {
			videos = append(videos, ve)
		}
	}
	repo.db.videos = videos

	reports := repo.db.reports[:0]
	for _, rpt := range repo.db.reports {
		if rpt.UserID != id {
			reports = append(reports, rpt)
		}
	}
	repo.db.reports = reports

	assignments := make([]*workflow.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if a.UserID != id {
			assignments = append(assignments, a)
		}
	}
	repo.db.assignments = assignments

	delete(repo.db.users, id)
	return nil
}
