package dummydb

import (
	"testing"

	testutil "github.com/trezcool/internhub/tests"
)

func TestRepositories(t *testing.T) {
	db := Open()
	testutil.RunRepositoryTests(t, testutil.Repositories{
		User:      NewUserRepository(db),
		Student:   NewStudentRepository(db),
		Report:    NewReportRepository(db),
		Workflow:  NewWorkflowRepository(db),
		Reference: NewReferenceRepository(db),
	}, db.Reset)
}
