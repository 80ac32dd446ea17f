package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/reference"
)

// list name -> table
var nameTables = map[string]string{
	reference.Departments: "departments",
	reference.Supervisors: "supervisors",
}

type referenceRepository struct {
	db core.DB
}

var _ reference.Repository = (*referenceRepository)(nil) // interface compliance check

func NewReferenceRepository(db core.DB) reference.Repository {
	return &referenceRepository{db: db}
}

func (repo referenceRepository) QueryCategories(ctx context.Context) ([]reference.Category, error) {
	cats := []reference.Category{}
	if err := repo.db.SelectContext(ctx, &cats, `SELECT id, name, value FROM categories ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting categories")
	}
	return cats, nil
}

func (repo referenceRepository) CreateCategory(ctx context.Context, cat reference.Category) (reference.Category, error) {
	const q = `INSERT INTO categories (name, value) VALUES ($1, $2) RETURNING id`
	if err := repo.db.GetContext(ctx, &cat.ID, q, cat.Name, cat.Value); err != nil {
		if isUniqueViolation(err) {
			return reference.Category{}, reference.ErrCategoryExists
		}
		return reference.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo referenceRepository) QueryNames(ctx context.Context, list string) ([]string, error) {
	table, ok := nameTables[list]
	if !ok {
		return nil, errors.Errorf("unknown list %q", list)
	}
	names := []string{}
	if err := repo.db.SelectContext(ctx, &names, `SELECT name FROM `+table+` ORDER BY id`); err != nil {
		return nil, errors.Wrapf(err, "selecting %s", table)
	}
	return names, nil
}

func (repo referenceRepository) AddName(ctx context.Context, list, name string) error {
	table, ok := nameTables[list]
	if !ok {
		return errors.Errorf("unknown list %q", list)
	}
	if _, err := repo.db.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES ($1)`, name); err != nil {
		if isUniqueViolation(err) {
			return reference.ExistsError(list)
		}
		return errors.Wrapf(err, "inserting into %s", table)
	}
	return nil
}
