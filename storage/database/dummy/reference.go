package dummydb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core/reference"
)

type referenceRepository struct {
	db *DB
}

var _ reference.Repository = (*referenceRepository)(nil) // interface compliance check

func NewReferenceRepository(db *DB) reference.Repository {
	return &referenceRepository{db: db}
}

func (repo *referenceRepository) QueryCategories(_ context.Context) ([]reference.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]reference.Category{}, repo.db.categories...), nil
}

func (repo *referenceRepository) CreateCategory(_ context.Context, cat reference.Category) (reference.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var maxID int
	for _, c := range repo.db.categories {
		if strings.EqualFold(c.Name, cat.Name) || c.Value == cat.Value {
			return reference.Category{}, reference.ErrCategoryExists
		}
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	cat.ID = maxID + 1
	repo.db.categories = append(repo.db.categories, cat)
	return cat, nil
}

func (repo *referenceRepository) QueryNames(_ context.Context, list string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	names, ok := repo.db.names[list]
	if !ok {
		return nil, errors.Errorf("unknown list %q", list)
	}
	return append([]string{}, names...), nil
}

func (repo *referenceRepository) AddName(_ context.Context, list, name string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	names, ok := repo.db.names[list]
	if !ok {
		return errors.Errorf("unknown list %q", list)
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return reference.ExistsError(list)
		}
	}
	repo.db.names[list] = append(names, name)
	return nil
}
