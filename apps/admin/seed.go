package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

const (
	seedAdminPassword   = "admin123"
	seedStudentPassword = "student123"
)

type seedUser struct {
	user.User
	pwd string
}

var seedUsers = []seedUser{
	{user.User{Name: "System Administrator", Email: "admin@enigmacamp.com", Role: user.RoleAdmin}, seedAdminPassword},
	{user.User{Name: "Sarah Johnson", Email: "supervisor@enigmacamp.com", Role: user.RoleAdmin}, seedAdminPassword},
	{newSeedStudent("John Doe", "john.doe@mail.com", "Frontend Development", "Sarah Johnson", user.StatusActive), seedStudentPassword},
	{newSeedStudent("Jane Smith", "jane.smith@mail.com", "Backend Development", "Mike Davis", user.StatusActive), seedStudentPassword},
	{newSeedStudent("Alex Johnson", "alex.johnson@mail.com", "UI/UX Design", "Emily Chen", user.StatusActive), seedStudentPassword},
	{newSeedStudent("Maria Garcia", "maria.garcia@mail.com", "Database", "John Smith", user.StatusInactive), seedStudentPassword},
}

func newSeedStudent(name, email, dept, supervisor, status string) user.User {
	return user.User{
		Name:       name,
		Email:      email,
		Role:       user.RoleStudent,
		Department: null.StringFrom(dept),
		Supervisor: null.StringFrom(supervisor),
		Status:     status,
	}
}

func intPtr(i int) *int { return &i }

// seed loads the demo data. Existing accounts are left untouched; workflows and the
// report are only created on an empty database.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	users := make(map[string]user.User, len(seedUsers))
	for _, su := range seedUsers {
		usr, err := cli.usrSvc.GetByEmail(ctx, su.Email)
		if err == user.ErrNotFound {
			usr, err = cli.usrSvc.AddUser(ctx, su.User, su.pwd)
		}
		if err != nil {
			return errors.Wrapf(err, "seeding %s", su.Email)
		}
		users[su.Email] = usr
	}
	admin, john, jane := users["supervisor@enigmacamp.com"], users["john.doe@mail.com"], users["jane.smith@mail.com"]

	wfs, err := cli.wfSvc.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying workflows")
	}
	if len(wfs) == 0 {
		seeds := []struct {
			nw       workflow.NewWorkflow
			assignee user.User
		}{
			{
				nw: workflow.NewWorkflow{
					Title:       "React Fundamentals",
					Description: "Learn the basics of React.js framework",
					Category:    "frontend",
					DueDate:     core.Date{Time: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
					Tasks: []workflow.NewTask{
						{Title: "React Components Introduction", Type: workflow.TaskVideo, Duration: "45 minutes"},
						{Title: "React Basics Quiz", Type: workflow.TaskQuiz, TotalQuestions: intPtr(10)},
					},
					AssignedUsers: []string{john.ID},
				},
				assignee: john,
			},
			{
				nw: workflow.NewWorkflow{
					Title:       "Node.js Backend Development",
					Description: "Build REST APIs with Node.js and Express",
					Category:    "backend",
					DueDate:     core.Date{Time: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)},
					Tasks: []workflow.NewTask{
						{Title: "Express routing", Type: workflow.TaskVideo, Duration: "30 minutes"},
						{Title: "REST API Quiz", Type: workflow.TaskQuiz, TotalQuestions: intPtr(10)},
					},
					AssignedUsers: []string{jane.ID},
				},
				assignee: jane,
			},
		}
		completed := true
		for _, s := range seeds {
			wf, err := cli.wfSvc.Create(ctx, admin, s.nw)
			if err != nil {
				return errors.Wrapf(err, "seeding workflow %q", s.nw.Title)
			}
			// in progress: first task done
			tc := workflow.TaskCompletion{Completed: &completed}
			if _, err = cli.wfSvc.CompleteTask(ctx, s.assignee, wf.ID, wf.Tasks[0].ID, tc); err != nil {
				return errors.Wrapf(err, "seeding progress of %q", s.nw.Title)
			}
		}
	}

	rpts, err := cli.rptSvc.Query(ctx, report.Scope{})
	if err != nil {
		return errors.Wrap(err, "querying daily reports")
	}
	if len(rpts) == 0 {
		_, err = cli.rptSvc.Create(ctx, john, report.NewDailyReport{
			Date:  core.Date{Time: time.Now().UTC().AddDate(0, 0, -1)},
			Notes: "Completed React component basics tutorial",
			VideoEntries: []report.NewVideoEntry{
				{Title: "React Components Introduction", Duration: "45 minutes", Category: "frontend"},
			},
			QuizEntries: []report.NewQuizEntry{
				{Title: "React Basics Quiz", Score: 8, TotalQuestions: 10, Category: "frontend"},
			},
		})
		if err != nil {
			return errors.Wrap(err, "seeding daily report")
		}
	}

	cli.logger.Info(fmt.Sprintf("database seeded: %d accounts", len(users)))
	return nil
}
