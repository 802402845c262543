package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core/user"
)

type adminApi struct {
	svc *user.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminApi{svc: opts.UserSvc}

	ag := g.Group("/admin", jwt, roleMiddleware(user.RoleAdmin))
	ag.POST("/addFaculty", api.addFaculty)
	ag.POST("/upload-batch", api.uploadFacultyBatch)
	ag.POST("/upload-studentbatch", api.uploadStudentBatch)
}

type (
	AddFacultyResponse struct {
		Success          bool         `json:"success"`
		Message          string       `json:"message"`
		Faculty          user.Faculty `json:"faculty"`
		NotificationSent bool         `json:"notificationSent"`
	}

	ImportResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		user.ImportReport
	}
)

// Handlers

func (api *adminApi) addFaculty(ctx echo.Context) error {
	var data user.NewFaculty
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculty")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	fac, notified, err := api.svc.AddFaculty(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, AddFacultyResponse{
		Success:          true,
		Message:          "Faculty added successfully.",
		Faculty:          fac,
		NotificationSent: notified,
	})
}

func (api *adminApi) uploadFacultyBatch(ctx echo.Context) error {
	file, fh, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	report, err := api.svc.ImportFacultyRoster(ctx.Request().Context(), fh.Filename, file)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ImportResponse{
		Success:      true,
		Message:      "Faculty batch processed.",
		ImportReport: report,
	})
}

func (api *adminApi) uploadStudentBatch(ctx echo.Context) error {
	batchName := ctx.FormValue("batchName")

	file, fh, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	report, err := api.svc.ImportStudentRoster(ctx.Request().Context(), batchName, fh.Filename, file)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ImportResponse{
		Success:      true,
		Message:      "Student batch processed.",
		ImportReport: report,
	})
}
