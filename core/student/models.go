package student

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/internhub/core"
	"github.com/trezcool/internhub/core/user"
)

// Stats are the counts of rows owned by a student.
type Stats struct {
	DailyReports     int `json:"dailyReports" db:"daily_reports"`
	VideosWatched    int `json:"videosWatched" db:"videos_watched"`
	QuizzesCompleted int `json:"quizzesCompleted" db:"quizzes_completed"`
}

// Student is an account with the student role, as listed in the directory.
type Student struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Department null.String `json:"department"`
	StartDate  string      `json:"startDate"`
	Supervisor null.String `json:"supervisor"`
	Status     string      `json:"status"`
	Stats      Stats       `json:"stats"`
	CreatedAt  time.Time   `json:"-"`
}

// FromUser builds a Student (without stats) from its account.
func FromUser(usr user.User) Student {
	return Student{
		ID:         usr.ID,
		Name:       usr.Name,
		Email:      usr.Email,
		Department: usr.Department,
		StartDate:  core.FormatDate(usr.CreatedAt),
		Supervisor: usr.Supervisor,
		Status:     usr.Status,
		CreatedAt:  usr.CreatedAt,
	}
}

// StatusCounts are the directory totals per status.
type StatusCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Completed int `json:"completed"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Department string `json:"department" validate:"required,max=100"`
	Supervisor string `json:"supervisor" validate:"required,max=100"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Department = core.CleanString(ns.Department)
	ns.Supervisor = core.CleanString(ns.Supervisor)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// An empty Status keeps the current one.
type UpdateStudent struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Department string `json:"department" validate:"required,max=100"`
	Supervisor string `json:"supervisor" validate:"required,max=100"`
	Status     string `json:"status" validate:"omitempty,userstatus"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Department = core.CleanString(us.Department)
	us.Supervisor = core.CleanString(us.Supervisor)
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

var (
	// orderingFields maps the accepted ?ordering= fields to their columns.
	orderingFields = map[string]string{
		"name":       "name",
		"email":      "email",
		"department": "department",
		"supervisor": "supervisor",
		"status":     "status",
		"startDate":  "created_at",
		"createdAt":  "created_at",
	}
	DefaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

// CleanOrdering maps client fields to columns, falling back to DefaultOrdering.
func CleanOrdering(ordering []core.DBOrdering) ([]core.DBOrdering, error) {
	if len(ordering) == 0 {
		return DefaultOrdering, nil
	}
	cleaned := make([]core.DBOrdering, 0, len(ordering)+1)
	for _, ord := range ordering {
		col, ok := orderingFields[ord.Field]
		if !ok {
			return nil, core.NewValidationError(
				nil,
				core.FieldError{Field: "ordering", Error: fmt.Sprintf("cannot order by %q", ord.Field)},
			)
		}
		cleaned = append(cleaned, core.DBOrdering{Field: col, Ascending: ord.Ascending})
	}
	// deterministic results for equal keys
	return append(cleaned, core.DBOrdering{Field: "id", Ascending: true}), nil
}
