package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func Test_withMiddleware(t *testing.T) {
	var trail []string
	mark := func(name string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(ctx echo.Context) error {
				trail = append(trail, name)
				return next(ctx)
			}
		}
	}
	run := func(chain []echo.MiddlewareFunc) []string {
		trail = nil
		h := func(echo.Context) error { return nil }
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		ctx := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		_ = h(ctx)
		return trail
	}

	// spare capacity lets a plain append share the backing array
	base := make([]echo.MiddlewareFunc, 1, 4)
	base[0] = mark("base")

	admin := withMiddleware(base, mark("admin"))
	student := withMiddleware(base, mark("student"))
	more := withMiddleware(admin, mark("extra"))

	assert.Equal(t, []string{"base", "admin"}, run(admin))
	assert.Equal(t, []string{"base", "student"}, run(student))
	assert.Equal(t, []string{"base", "admin", "extra"}, run(more))
	assert.Len(t, base, 1)
}
