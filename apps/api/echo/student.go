package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
)

type studentApi struct {
	courses *course.Service
	users   *user.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{courses: opts.CourseSvc, users: opts.UserSvc}

	sg := g.Group("/student", jwt, roleMiddleware(user.RoleStudent))
	sg.GET("/my-courses", api.myCourses)
	sg.GET("/course/:id", api.retrieveCourse)
	sg.GET("/course-materials/:id", api.courseMaterials)
	sg.GET("/details/:studentId", api.details)
	sg.POST("/course/:cid/assignment/:aid/submit", api.submitAssignment)
}

// Handlers

func (api *studentApi) myCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	courses, err := api.courses.ByStudent(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CoursesResponse{Success: true, Courses: courses})
}

func (api *studentApi) retrieveCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	crs, err := api.courses.GetForStudent(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CourseResponse{Success: true, Course: crs})
}

func (api *studentApi) courseMaterials(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	mats, err := api.courses.MaterialsFor(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MaterialsResponse{Success: true, Materials: mats})
}

func (api *studentApi) details(ctx echo.Context) error {
	std, err := api.users.StudentByID(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, struct {
		Success bool         `json:"success"`
		Student user.Student `json:"student"`
	}{true, std})
}

func (api *studentApi) submitAssignment(ctx echo.Context) error {
	file, fh, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sub, err := api.courses.Submit(
		ctx.Request().Context(), claims.Subject, ctx.Param("cid"), ctx.Param("aid"),
		fh.Filename, fileContentType(fh), file,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmissionResponse{Success: true, Message: "Assignment submitted.", Submission: sub})
}
