package reference

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core"
)

// Name lists
const (
	Departments = "departments"
	Supervisors = "supervisors"
)

var (
	// errors
	ErrCategoryExists   = core.NewConflictError("Category with this name or value already exists")
	ErrDepartmentExists = core.NewConflictError("Department already exists")
	ErrSupervisorExists = core.NewConflictError("Supervisor already exists")
)

type (
	Repository interface {
		// QueryCategories returns the categories by insertion order.
		QueryCategories(ctx context.Context) ([]Category, error)
		// CreateCategory returns ErrCategoryExists if the name or value is taken.
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		// QueryNames returns the names of list (Departments or Supervisors) by insertion order.
		QueryNames(ctx context.Context, list string) ([]string, error)
		// AddName returns ErrDepartmentExists or ErrSupervisorExists if name is already in list.
		AddName(ctx context.Context, list, name string) error
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

// ExistsError returns the conflict error of list.
func ExistsError(list string) error {
	if list == Supervisors {
		return ErrSupervisorExists
	}
	return ErrDepartmentExists
}

func (svc *Service) Categories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	cat, err := svc.repo.CreateCategory(ctx, Category{Name: nc.Name, Value: nc.Value})
	if err != nil {
		if err == ErrCategoryExists {
			return Category{}, err
		}
		return Category{}, errors.Wrap(err, "creating category")
	}
	return cat, nil
}

func (svc *Service) Names(ctx context.Context, list string) ([]string, error) {
	return svc.repo.QueryNames(ctx, list)
}

func (svc *Service) AddName(ctx context.Context, list string, nn NewName) error {
	if err := svc.repo.AddName(ctx, list, nn.Name); err != nil {
		if err == ExistsError(list) {
			return err
		}
		return errors.Wrapf(err, "adding to %s", list)
	}
	return nil
}
