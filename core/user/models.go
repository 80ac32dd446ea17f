package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/internhub/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
)

var (
	AllRoles    = []string{RoleAdmin, RoleStudent}
	AllStatuses = []string{StatusActive, StatusInactive, StatusCompleted}
)

type User struct {
	ID                string      `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	Email             string      `json:"email" db:"email"`
	Role              string      `json:"role" db:"role"`
	Department        null.String `json:"department" db:"department"`
	Supervisor        null.String `json:"supervisor" db:"supervisor"`
	Status            string      `json:"status" db:"status"`
	PasswordHash      []byte      `json:"-" db:"password_hash"`
	MustResetPassword bool        `json:"mustResetPassword" db:"must_reset_password"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt         time.Time   `json:"updatedAt" db:"updated_at"` // UTC
	LastLogin         null.Time   `json:"lastLogin" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsActive() bool {
	return u.Status != StatusInactive
}

// PublicUser is the identity embedded in other resources.
type PublicUser struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// LoginCredentials is what a user signs in with.
type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (lc *LoginCredentials) Validate(validate *validator.Validate) error {
	lc.Email = core.CleanString(lc.Email, true /* lower */)
	return validate.Struct(lc)
}

// ChangePassword is used by a signed-in user to replace their password.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=128,nefield=CurrentPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate, usr User) error {
	if err := validate.Struct(cp); err != nil {
		return err
	}
	if msg := CheckPasswordPolicy(cp.NewPassword, usr.Name, usr.Email); msg != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "newPassword", Error: msg})
	}
	return nil
}
