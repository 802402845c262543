package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core"
	"github.com/eduspace/backend/core/chat"
	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
)

var (
	errUnauthenticated = echo.NewHTTPError(http.StatusForbidden, "Access denied. No token provided.")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "Access denied.")
)

// errStatus maps domain sentinel errors to HTTP status codes.
var errStatus = map[error]int{
	user.ErrNotFound:             http.StatusNotFound,
	user.ErrBatchNotFound:        http.StatusNotFound,
	course.ErrNotFound:           http.StatusNotFound,
	course.ErrAssignmentNotFound: http.StatusNotFound,
	course.ErrMaterialNotFound:   http.StatusNotFound,
	course.ErrSubmissionNotFound: http.StatusNotFound,
	chat.ErrRoomNotFound:         http.StatusNotFound,

	course.ErrNotOwner:     http.StatusForbidden,
	course.ErrNotEnrolled:  http.StatusForbidden,
	course.ErrNotMember:    http.StatusForbidden,
	chat.ErrNotParticipant: http.StatusForbidden,

	user.ErrInvalidCredentials: http.StatusBadRequest,
	user.ErrInvalidResetToken:  http.StatusBadRequest,
	user.ErrEmailExists:        http.StatusBadRequest,
	user.ErrFacultyExists:      http.StatusBadRequest,
	user.ErrStudentExists:      http.StatusBadRequest,
	user.ErrBatchEntryExists:   http.StatusBadRequest,
	course.ErrAlreadySubmitted: http.StatusBadRequest,
}

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		resp := errorResponse{Success: false}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				// no token at all
				code = http.StatusForbidden
				resp.Message = "Access denied. No token provided."
				break
			}
			if origErr.Code == http.StatusUnauthorized {
				// jwt middleware: bad signature or expired
				code = http.StatusBadRequest
				resp.Message = "Invalid Token"
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Message = fmt.Sprintf("%v", origErr.Message)
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			resp.Message = "invalid input"
			resp.Fields = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp.Message = origErr.Error()
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				resp.Fields = fldErrs
			}
		default:
			if status, ok := errStatus[cause]; ok {
				code = status
				resp.Message = cause.Error()
				break
			}

			// any other error is a server error
			resp.Message = http.StatusText(http.StatusInternalServerError)

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			logger.Error(resp.Message, errors.Wrap(err, resp.Message), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			resp.Message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
