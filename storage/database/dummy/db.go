// Package dummydb implements the repositories in memory, for tests and local runs.
// One lock guards every table, so multi-table writes are atomic.
package dummydb

import (
	"sync"

	"github.com/trezcool/internhub/core/reference"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

type DB struct {
	sync.RWMutex

	users       map[string]*user.User
	reports     []*report.DailyReport // without entries
	videos      []report.VideoEntry
	quizzes     []report.QuizEntry
	workflows   []*workflow.Workflow // without assignments
	assignments []*workflow.Assignment
	categories  []reference.Category
	names       map[string][]string
}

func Open() *DB {
	db := &DB{
		users:      make(map[string]*user.User),
		categories: append([]reference.Category(nil), reference.DefaultCategories...),
		names: map[string][]string{
			reference.Departments: append([]string(nil), reference.DefaultDepartments...),
			reference.Supervisors: append([]string(nil), reference.DefaultSupervisors...),
		},
	}
	return db
}

// Reset empties every table and restores the reference lists.
func (db *DB) Reset() {
	fresh := Open()
	db.Lock()
	defer db.Unlock()
	db.users = fresh.users
	db.reports = nil
	db.videos = nil
	db.quizzes = nil
	db.workflows = nil
	db.assignments = nil
	db.categories = fresh.categories
	db.names = fresh.names
}

func (db *DB) userName(id string) string {
	if usr, ok := db.users[id]; ok {
		return usr.Name
	}
	return ""
}
