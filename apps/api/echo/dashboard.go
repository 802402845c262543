package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduspace/backend/core/user"
)

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	dg := g.Group("/dashboard", jwt)
	dg.GET("/admin-dashboard", dashboard("Welcome to the admin dashboard."), roleMiddleware(user.RoleAdmin))
	dg.GET("/faculty-dashboard", dashboard("Welcome to the faculty dashboard."), roleMiddleware(user.RoleFaculty))
	dg.GET("/student-dashboard", dashboard("Welcome to the student dashboard."), roleMiddleware(user.RoleStudent))
}

func dashboard(msg string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
	}
}
