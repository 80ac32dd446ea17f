// Package reference manages the lists offered by the client's pickers:
// workflow/report categories, departments and supervisors.
package reference

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core"
)

var (
	errCategoryRequired = errors.New("Name and value are required")
	errNameRequired     = errors.New("Name is required")
)

type Category struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Value string `json:"value" db:"value"`
}

type NewCategory struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Value string `json:"value" validate:"notblank,max=50"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Value = core.CleanString(nc.Value, true /* lower */)
	return collapseBlank(validate.Struct(nc), errCategoryRequired)
}

// NewName is a new department or supervisor.
type NewName struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

func (nn *NewName) Validate(validate *validator.Validate) error {
	nn.Name = core.CleanString(nn.Name)
	return collapseBlank(validate.Struct(nn), errNameRequired)
}

// collapseBlank reports any blank field as the single msg error; other
// failures keep their per-field form.
func collapseBlank(err error, msg error) error {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range vErrs {
		if fe.Tag() == "notblank" {
			return core.NewValidationError(msg)
		}
	}
	return err
}
