package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core/user"
	"github.com/trezcool/internhub/core/workflow"
)

type workflowApi struct {
	svc      *workflow.Service
	validate *validator.Validate
}

func registerWorkflowAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := workflowApi{
		svc:      deps.WorkflowSvc,
		validate: deps.Validate,
	}

	wg := g.Group("/workflows", authed...)
	wg.GET("", api.query)
	wg.POST("", api.create, requireRole(user.RoleAdmin))
	wg.GET("/buckets", api.buckets)
	wg.PUT("/:id/tasks/:taskId", api.completeTask)
}

// Handlers

// query returns every workflow to admins, and their own assignments to anybody else.
func (api *workflowApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	if usr.IsAdmin() {
		wfs, err := api.svc.QueryAll(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "querying workflows")
		}
		return ctx.JSON(http.StatusOK, WorkflowsResponse{Workflows: wfs})
	}

	wfs, err := api.svc.QueryAssigned(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying assigned workflows")
	}
	return ctx.JSON(http.StatusOK, WorkflowsResponse{Workflows: wfs})
}

func (api *workflowApi) buckets(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	if usr.IsAdmin() {
		wfs, err := api.svc.QueryAll(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "querying workflows")
		}
		return ctx.JSON(http.StatusOK, workflow.BucketWorkflows(wfs))
	}

	wfs, err := api.svc.QueryAssigned(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying assigned workflows")
	}
	return ctx.JSON(http.StatusOK, workflow.BucketStudentWorkflows(wfs))
}

func (api *workflowApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data workflow.NewWorkflow
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkflow")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	wf, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating workflow")
	}
	return ctx.JSON(http.StatusCreated, WorkflowResponse{Workflow: wf})
}

func (api *workflowApi) completeTask(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data workflow.TaskCompletion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TaskCompletion")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	wf, err := api.svc.CompleteTask(ctx.Request().Context(), usr, ctx.Param("id"), ctx.Param("taskId"), data)
	if err != nil {
		return errors.Wrap(err, "completing task")
	}
	return ctx.JSON(http.StatusOK, WorkflowResponse{Workflow: wf})
}

type (
	WorkflowsResponse struct {
		Workflows interface{} `json:"workflows"`
	}

	WorkflowResponse struct {
		Workflow interface{} `json:"workflow"`
	}
)
