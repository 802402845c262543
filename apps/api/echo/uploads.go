package echoapi

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core"
)

// formFile extracts the "file" part of a multipart upload.
func formFile(ctx echo.Context) (multipart.File, *multipart.FileHeader, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a file upload is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening uploaded file")
	}
	return f, fh, nil
}

func fileContentType(fh *multipart.FileHeader) string {
	return fh.Header.Get(echo.HeaderContentType)
}
