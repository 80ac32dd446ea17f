package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core/report"
)

var userIDParam = "userId"

type reportApi struct {
	svc      *report.Service
	validate *validator.Validate
}

func registerReportAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{
		svc:      deps.ReportSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/daily-reports", authed...)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/:id", api.retrieve)
}

// contextScope is what the caller may read: everything (or ?userId=) for admins, their own rows otherwise.
func contextScope(ctx echo.Context) (report.Scope, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return report.Scope{}, err
	}
	return report.NewScope(usr, ctx.QueryParam(userIDParam)), nil
}

// Handlers

func (api *reportApi) query(ctx echo.Context) error {
	scope, err := contextScope(ctx)
	if err != nil {
		return err
	}
	rpts, err := api.svc.Query(ctx.Request().Context(), scope)
	if err != nil {
		return errors.Wrap(err, "querying daily reports")
	}
	return ctx.JSON(http.StatusOK, DailyReportsResponse{DailyReports: rpts})
}

func (api *reportApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data report.NewDailyReport
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDailyReport")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	rpt, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating daily report")
	}
	return ctx.JSON(http.StatusCreated, DailyReportResponse{DailyReport: rpt})
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rpt, err := api.svc.GetByID(ctx.Request().Context(), report.NewScope(usr, ""), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding daily report by ID")
	}
	return ctx.JSON(http.StatusOK, DailyReportResponse{DailyReport: rpt})
}

type (
	DailyReportsResponse struct {
		DailyReports []report.DailyReport `json:"dailyReports"`
	}

	DailyReportResponse struct {
		DailyReport report.DailyReport `json:"dailyReport"`
	}
)
