package student

import (
	"context"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("Student not found")
	ErrEmailExists = user.ErrEmailExists
	ErrEmailTaken  = core.NewConflictError("Email already taken by another user")
)

type (
	Repository interface {
		// QueryStudents returns every student with their Stats.
		QueryStudents(ctx context.Context, ordering []core.DBOrdering) ([]Student, error)
		// GetStudent returns ErrNotFound if no student account has this id.
		GetStudent(ctx context.Context, id string) (Student, error)
		// CountStudents counts students with status, or all of them if status is empty.
		CountStudents(ctx context.Context, status string) (int, error)
		// DeleteStudent deletes, in one transaction, the student's quiz entries, video entries,
		// daily reports, workflow assignments, then the account.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		usrRepo  user.Repository
		mailSvc  core.EmailService
		tmpPwLen int
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(usrRepo, "usrRepo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{
		repo:     repo,
		usrRepo:  usrRepo,
		mailSvc:  mailSvc,
		tmpPwLen: conf.TempPasswordLen,
	}
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Student, error) {
	ordering, err := CleanOrdering(ordering)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryStudents(ctx, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// Create registers a new student with a generated one-time password, mailed to them.
// The student has to replace it on first sign in.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	exists, err := svc.usrRepo.EmailExists(ctx, ns.Email)
	if err != nil {
		return Student{}, errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return Student{}, ErrEmailExists
	}

	pwd, err := user.GeneratePassword(svc.tmpPwLen)
	if err != nil {
		return Student{}, errors.Wrap(err, "generating password")
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:              ns.Name,
		Email:             ns.Email,
		Role:              user.RoleStudent,
		Department:        null.StringFrom(ns.Department),
		Supervisor:        null.StringFrom(ns.Supervisor),
		Status:            user.StatusActive,
		MustResetPassword: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err = usr.SetPassword(pwd); err != nil {
		return Student{}, errors.Wrap(err, "setting password")
	}
	if usr, err = svc.usrRepo.CreateUser(ctx, usr); err != nil {
		if err == user.ErrEmailExists {
			return Student{}, ErrEmailExists
		}
		return Student{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr, pwd)
	return FromUser(usr), nil
}

func (svc *Service) sendWelcomeMail(usr user.User, pwd string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your InternHub account",
		TemplateName: "student_welcome",
		TemplateData: struct {
			Name     string
			Email    string
			Password string
		}{usr.Name, usr.Email, pwd},
	})
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if _, err := svc.repo.GetStudent(ctx, id); err != nil {
		return Student{}, err
	}

	taken, err := svc.usrRepo.EmailExists(ctx, us.Email, id)
	if err != nil {
		return Student{}, errors.Wrap(err, "checking email uniqueness")
	}
	if taken {
		return Student{}, ErrEmailTaken
	}

	usr, err := svc.usrRepo.GetUserByID(ctx, id)
	if err != nil {
		if err == user.ErrNotFound {
			return Student{}, ErrNotFound
		}
		return Student{}, errors.Wrap(err, "finding user by ID")
	}
	usr.Name = us.Name
	usr.Email = us.Email
	usr.Department = null.StringFrom(us.Department)
	usr.Supervisor = null.StringFrom(us.Supervisor)
	if us.Status != "" {
		usr.Status = us.Status
	}
	usr.UpdatedAt = time.Now().UTC()

	if _, err = svc.usrRepo.UpdateUser(ctx, usr); err != nil {
		switch err {
		case user.ErrEmailExists:
			return Student{}, ErrEmailTaken
		case user.ErrNotFound:
			return Student{}, ErrNotFound
		}
		return Student{}, errors.Wrap(err, "updating user")
	}
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// CountByStatus issues the four independent counts concurrently.
func (svc *Service) CountByStatus(ctx context.Context) (StatusCounts, error) {
	var counts StatusCounts
	g, gctx := errgroup.WithContext(ctx)

	count := func(status string, dest *int) {
		g.Go(func() error {
			n, err := svc.repo.CountStudents(gctx, status)
			if err != nil {
				return errors.Wrapf(err, "counting %q students", status)
			}
			*dest = n
			return nil
		})
	}
	count("", &counts.Total)
	count(user.StatusActive, &counts.Active)
	count(user.StatusInactive, &counts.Inactive)
	count(user.StatusCompleted, &counts.Completed)

	if err := g.Wait(); err != nil {
		return StatusCounts{}, err
	}
	return counts, nil
}
