package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core/progress"
	"github.com/trezcool/internhub/core/user"
)

type progressApi struct {
	svc *progress.Service
}

func registerProgressAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := progressApi{svc: deps.ProgressSvc}

	g.GET("/progress", api.timeline, authed...)
	g.GET("/reports/summary", api.summary, withMiddleware(authed, requireRole(user.RoleAdmin))...)
}

// Handlers

func (api *progressApi) timeline(ctx echo.Context) error {
	scope, err := contextScope(ctx)
	if err != nil {
		return err
	}
	entries, err := api.svc.Timeline(ctx.Request().Context(), scope)
	if err != nil {
		return errors.Wrap(err, "building progress timeline")
	}
	return ctx.JSON(http.StatusOK, ProgressResponse{ProgressData: entries})
}

func (api *progressApi) summary(ctx echo.Context) error {
	rpt, err := api.svc.Summary(ctx.Request().Context(), ctx.QueryParam(userIDParam))
	if err != nil {
		return errors.Wrap(err, "summarizing progress")
	}
	return ctx.JSON(http.StatusOK, rpt)
}

type ProgressResponse struct {
	ProgressData []progress.TimelineEntry `json:"progressData"`
}
