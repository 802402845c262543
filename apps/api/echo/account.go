package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core"
	"github.com/eduspace/backend/core/user"
)

type accountApi struct {
	conf *core.Config
	svc  *user.Service
}

func registerAccountAPI(g *echo.Group, opts *Options) {
	api := accountApi{conf: opts.Conf, svc: opts.UserSvc}

	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/forgot-password", api.forgotPassword)
	ag.POST("/reset-password/:token", api.resetPassword)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		Token   string `json:"token"`
	}

	MessageResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}
	if data.Role == user.RoleAdmin {
		// admin accounts are provisioned via the CLI only
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "cannot self-register as admin"})
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, TokenResponse{Success: true, Message: "Registration successful.", Token: token})
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// unknown email surfaces as not-found, bad password as invalid credentials
	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Success: true, Token: token})
}

func (api *accountApi) forgotPassword(ctx echo.Context) error {
	var data struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to forgotPassword request")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		return errors.Wrap(err, "requesting password reset")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "An email has been sent to your inbox with instructions to reset your password.",
	})
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	var data struct {
		Password string `json:"password"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to resetPassword request")
	}

	rp := user.ResetUserPassword{Token: ctx.Param("token"), Password: data.Password}
	if err := api.svc.ResetPassword(ctx.Request().Context(), rp); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Password has been reset with the new password."})
}
