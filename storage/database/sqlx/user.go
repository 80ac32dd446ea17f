package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

const userColumns = `id, name, email, role, department, supervisor, status, password_hash,
	must_reset_password, created_at, updated_at, last_login`

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	usr.CreatedAt = usr.CreatedAt.UTC()
	usr.UpdatedAt = usr.UpdatedAt.UTC()

	const q = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :email, :role, :department, :supervisor, :status, :password_hash,
			:must_reset_password, :created_at, :updated_at, :last_login)`
	if _, err := sqlxNamedExec(ctx, repo.db, q, usr); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user by email")
	}
	return usr, nil
}

func (repo userRepository) EmailExists(ctx context.Context, email string, excludedIDs ...string) (bool, error) {
	if excludedIDs == nil {
		excludedIDs = []string{}
	}
	const q = `SELECT EXISTS (
		SELECT 1 FROM users WHERE lower(email) = lower($1) AND NOT (id = ANY($2))
	)`
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, email, pq.Array(excludedIDs)); err != nil {
		return false, errors.Wrap(err, "checking email uniqueness")
	}
	return exists, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.UpdatedAt = usr.UpdatedAt.UTC()

	const q = `UPDATE users SET
		name = :name, email = :email, role = :role, department = :department, supervisor = :supervisor,
		status = :status, password_hash = :password_hash, must_reset_password = :must_reset_password,
		updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlxNamedExec(ctx, repo.db, q, usr)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
