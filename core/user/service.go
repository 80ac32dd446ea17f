package user

import (
	"context"
	"errors"
	"time"

	"github.com/kat-co/vala"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user not found")
	ErrEmailExists        = core.NewConflictError("User with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrWrongPassword      = core.NewValidationError(nil, core.FieldError{Field: "currentPassword", Error: "wrong password"})
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists if the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// EmailExists reports whether any account other than excludedIDs uses email.
		EmailExists(ctx context.Context, email string, excludedIDs ...string) (bool, error)
		// UpdateUser returns ErrNotFound if the user does not exist and ErrEmailExists if the email is taken.
		UpdateUser(ctx context.Context, usr User) (User, error)
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

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, creds LoginCredentials) (User, error) {
	usr, err := svc.GetByEmail(ctx, creds.Email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive() {
		return User{}, ErrAccountDeactivated
	}
	return svc.SetLastLogin(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateUser(ctx, usr)
}

// ChangePassword replaces the password of a signed-in user and lifts any forced reset.
func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.CurrentPassword); err != nil {
		return User{}, ErrWrongPassword
	}
	return svc.SetPassword(ctx, usr, cp.NewPassword)
}

// SetPassword sets a new password without checking the old one.
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr.MustResetPassword = false
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// AddUser updates or creates an account identified by its email.
func (svc *Service) AddUser(ctx context.Context, usr User, pwd string) (User, error) {
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	usr.Name = core.CleanString(usr.Name)
	if usr.Status == "" {
		usr.Status = StatusActive
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr.UpdatedAt = now

	existing, err := svc.repo.GetUserByEmail(ctx, usr.Email)
	switch {
	case err == nil:
		usr.ID = existing.ID
		usr.CreatedAt = existing.CreatedAt
		usr.LastLogin = existing.LastLogin
		return svc.repo.UpdateUser(ctx, usr)
	case err == ErrNotFound:
		if usr.CreatedAt.IsZero() {
			usr.CreatedAt = now
		}
		return svc.repo.CreateUser(ctx, usr)
	default:
		return User{}, err
	}
}
