package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/eduspace/backend/core"
	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
)

type facultyApi struct {
	courses *course.Service
	users   *user.Service
}

func registerFacultyAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := facultyApi{courses: opts.CourseSvc, users: opts.UserSvc}

	fg := g.Group("/faculty", jwt, roleMiddleware(user.RoleFaculty))
	fg.POST("/create-course", api.createCourse)
	fg.GET("/my-courses", api.myCourses)
	fg.GET("/course/:id", api.retrieveCourse)
	fg.POST("/course/:id/add-student", api.addStudent)
	fg.POST("/course/:id/add-students", api.addStudents)
	fg.POST("/add-materials", api.addMaterial)
	fg.GET("/course-materials/:id", api.courseMaterials)
	fg.DELETE("/delete-material/:cid/:mid", api.deleteMaterial)
	fg.POST("/add-assignments", api.addAssignment)
	fg.GET("/course-assignments/:id", api.courseAssignments)
	fg.DELETE("/delete-assignment/:cid/:aid", api.deleteAssignment)
	fg.GET("/details/:facultyId", api.details)
	fg.POST("/course/:cid/assignment/:aid/grade", api.gradeSubmission)
}

type (
	CourseResponse struct {
		Success bool          `json:"success"`
		Message string        `json:"message,omitempty"`
		Course  course.Course `json:"course"`
	}

	CoursesResponse struct {
		Success bool            `json:"success"`
		Courses []course.Course `json:"courses"`
	}

	EnrollmentResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		course.EnrollmentResult
	}

	AddStudentResponse struct {
		Success          bool   `json:"success"`
		Message          string `json:"message"`
		NotificationSent bool   `json:"notificationSent"`
	}

	MaterialResponse struct {
		Success  bool                 `json:"success"`
		Message  string               `json:"message,omitempty"`
		Material course.MaterialEntry `json:"material"`
	}

	MaterialsResponse struct {
		Success   bool                   `json:"success"`
		Materials []course.MaterialEntry `json:"materials"`
	}

	AssignmentResponse struct {
		Success    bool              `json:"success"`
		Message    string            `json:"message,omitempty"`
		Assignment course.Assignment `json:"assignment"`
	}

	AssignmentsResponse struct {
		Success     bool                `json:"success"`
		Assignments []course.Assignment `json:"assignments"`
	}

	SubmissionResponse struct {
		Success    bool              `json:"success"`
		Message    string            `json:"message,omitempty"`
		Submission course.Submission `json:"submission"`
	}

	addStudentRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	addStudentsRequest struct {
		Emails []string `json:"emails" validate:"required,min=1"`
	}

	addAssignmentRequest struct {
		CourseID string `json:"courseId" validate:"required"`
		course.NewAssignment
	}

	gradeRequest struct {
		StudentID string `json:"studentId" validate:"required"`
		course.Grading
	}
)

// Handlers

func (api *facultyApi) createCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	crs, err := api.courses.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, CourseResponse{Success: true, Message: "Course created successfully.", Course: crs})
}

func (api *facultyApi) myCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	courses, err := api.courses.ByFaculty(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying faculty courses")
	}
	return ctx.JSON(http.StatusOK, CoursesResponse{Success: true, Courses: courses})
}

func (api *facultyApi) retrieveCourse(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	crs, err := api.courses.GetOwned(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CourseResponse{Success: true, Course: crs})
}

func (api *facultyApi) addStudent(ctx echo.Context) error {
	var data addStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to addStudentRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.courses.EnrollStudents(ctx.Request().Context(), claims.Subject, ctx.Param("id"), []string{data.Email})
	if err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: res.Errors[0].Message})
	}
	return ctx.JSON(http.StatusOK, AddStudentResponse{
		Success:          true,
		Message:          "Student added successfully.",
		NotificationSent: res.Enrolled[0].Notified,
	})
}

func (api *facultyApi) addStudents(ctx echo.Context) error {
	var data addStudentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to addStudentsRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.courses.EnrollStudents(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Emails)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, EnrollmentResponse{Success: true, Message: "Enrollment processed.", EnrollmentResult: res})
}

func (api *facultyApi) addMaterial(ctx echo.Context) error {
	data := course.NewMaterial{
		CO:          ctx.FormValue("co"),
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
	}
	if err := data.Validate(); err != nil {
		return err
	}

	file, fh, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	entry, err := api.courses.AddMaterial(
		ctx.Request().Context(), claims.Subject, ctx.FormValue("courseId"),
		data, fh.Filename, fileContentType(fh), file,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, MaterialResponse{Success: true, Message: "Material added successfully.", Material: entry})
}

func (api *facultyApi) courseMaterials(ctx echo.Context) error {
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

func (api *facultyApi) deleteMaterial(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.courses.DeleteMaterial(ctx.Request().Context(), claims.Subject, ctx.Param("cid"), ctx.Param("mid")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Material deleted."})
}

func (api *facultyApi) addAssignment(ctx echo.Context) error {
	var data addAssignmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to addAssignmentRequest")
	}
	if err := data.NewAssignment.Validate(); err != nil {
		return err
	}
	if data.CourseID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "courseId", Error: "this field is required"})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	asg, err := api.courses.AddAssignment(ctx.Request().Context(), claims.Subject, data.CourseID, data.NewAssignment)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, AssignmentResponse{Success: true, Message: "Assignment added successfully.", Assignment: asg})
}

func (api *facultyApi) courseAssignments(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	asgs, err := api.courses.Assignments(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AssignmentsResponse{Success: true, Assignments: asgs})
}

func (api *facultyApi) deleteAssignment(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.courses.DeleteAssignment(ctx.Request().Context(), claims.Subject, ctx.Param("cid"), ctx.Param("aid")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Assignment deleted."})
}

func (api *facultyApi) details(ctx echo.Context) error {
	fac, err := api.users.FacultyByID(ctx.Request().Context(), ctx.Param("facultyId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, struct {
		Success bool         `json:"success"`
		Faculty user.Faculty `json:"faculty"`
	}{true, fac})
}

func (api *facultyApi) gradeSubmission(ctx echo.Context) error {
	var data gradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to gradeRequest")
	}
	if err := core.Validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sub, err := api.courses.Grade(
		ctx.Request().Context(), claims.Subject, ctx.Param("cid"), ctx.Param("aid"), data.StudentID, data.Grading,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SubmissionResponse{Success: true, Message: "Submission graded.", Submission: sub})
}
