package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/internhub/core/reference"
	"github.com/trezcool/internhub/core/user"
)

type referenceApi struct {
	svc      *reference.Service
	validate *validator.Validate
}

func registerReferenceAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := referenceApi{
		svc:      deps.ReferenceSvc,
		validate: deps.Validate,
	}
	admin := withMiddleware(authed, requireRole(user.RoleAdmin))

	// lists are public
	g.GET("/categories", api.queryCategories)
	g.POST("/categories", api.createCategory, admin...)
	g.GET("/departments", api.queryNames(reference.Departments))
	g.POST("/departments", api.addName(reference.Departments), admin...)
	g.GET("/supervisors", api.queryNames(reference.Supervisors))
	g.POST("/supervisors", api.addName(reference.Supervisors), admin...)
}

// Handlers

func (api *referenceApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"categories": cats, "success": true})
}

func (api *referenceApi) createCategory(ctx echo.Context) error {
	var data reference.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *referenceApi) queryNames(list string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		names, err := api.svc.Names(ctx.Request().Context(), list)
		if err != nil {
			return errors.Wrapf(err, "querying %s", list)
		}
		return ctx.JSON(http.StatusOK, echo.Map{list: names, "success": true})
	}
}

func (api *referenceApi) addName(list string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data reference.NewName
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to NewName")
		}
		if err := data.Validate(api.validate); err != nil {
			return err
		}

		if err := api.svc.AddName(ctx.Request().Context(), list, data); err != nil {
			return errors.Wrapf(err, "adding to %s", list)
		}
		return ctx.JSON(http.StatusCreated, data)
	}
}
