package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduspace/backend/core/user"
)

type batchApi struct {
	svc *user.Service
}

func registerBatchAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := batchApi{svc: opts.UserSvc}

	bg := g.Group("/batches", jwt)
	bg.GET("/students", api.batches)
	bg.GET("/emails/:batchName", api.batchEmails)
}

type (
	BatchesResponse struct {
		Success bool         `json:"success"`
		Batches []user.Batch `json:"batches"`
	}

	BatchEmailsResponse struct {
		Success bool     `json:"success"`
		Emails  []string `json:"emails"`
	}
)

// Handlers

func (api *batchApi) batches(ctx echo.Context) error {
	batches, err := api.svc.Batches(ctx.Request().Context())
	if err != nil {
		return err
	}
	if batches == nil {
		batches = []user.Batch{}
	}
	return ctx.JSON(http.StatusOK, BatchesResponse{Success: true, Batches: batches})
}

func (api *batchApi) batchEmails(ctx echo.Context) error {
	emails, err := api.svc.BatchEmails(ctx.Request().Context(), ctx.Param("batchName"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, BatchEmailsResponse{Success: true, Emails: emails})
}
