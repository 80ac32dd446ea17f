package progress

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/report"
	"github.com/trezcool/internhub/core/student"
	"github.com/trezcool/internhub/core/workflow"
)

type (
	// WorkflowQuerier lists every workflow with its assignment counters.
	WorkflowQuerier interface {
		QueryAll(ctx context.Context) ([]workflow.Workflow, error)
	}

	Service struct {
		rptRepo report.Repository
		stdRepo student.Repository
		wfs     WorkflowQuerier
	}
)

func NewService(rptRepo report.Repository, stdRepo student.Repository, wfs WorkflowQuerier) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(rptRepo, "rptRepo"),
		vala.IsNotNil(stdRepo, "stdRepo"),
		vala.IsNotNil(wfs, "wfs"),
	).CheckAndPanic()

	return &Service{rptRepo: rptRepo, stdRepo: stdRepo, wfs: wfs}
}

// Timeline fetches videos and quizzes in scope concurrently; any failure fails the whole timeline.
func (svc *Service) Timeline(ctx context.Context, scope report.Scope) ([]TimelineEntry, error) {
	var (
		videos  []report.VideoEntry
		quizzes []report.QuizEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		videos, err = svc.rptRepo.QueryVideoEntries(gctx, scope)
		return errors.Wrap(err, "querying video entries")
	})
	g.Go(func() (err error) {
		quizzes, err = svc.rptRepo.QueryQuizEntries(gctx, scope)
		return errors.Wrap(err, "querying quiz entries")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildTimeline(videos, quizzes), nil
}

// Summary reports on every student, or on the student with userID if given
// (student.ErrNotFound if there is none).
func (svc *Service) Summary(ctx context.Context, userID string) (Report, error) {
	userID = core.CleanString(userID)

	var students []student.Student
	if userID != "" {
		s, err := svc.stdRepo.GetStudent(ctx, userID)
		if err != nil {
			return Report{}, err
		}
		students = []student.Student{s}
	}

	var (
		quizzes   []report.QuizEntry
		workflows []workflow.Workflow
	)
	g, gctx := errgroup.WithContext(ctx)
	if students == nil {
		g.Go(func() (err error) {
			students, err = svc.stdRepo.QueryStudents(gctx, student.DefaultOrdering)
			return errors.Wrap(err, "querying students")
		})
	}
	g.Go(func() (err error) {
		quizzes, err = svc.rptRepo.QueryQuizEntries(gctx, report.Scope{UserID: userID})
		return errors.Wrap(err, "querying quiz entries")
	})
	g.Go(func() (err error) {
		workflows, err = svc.wfs.QueryAll(gctx)
		return errors.Wrap(err, "querying workflows")
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Summarize(students, quizzes, workflows), nil
}
