package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/eduspace/backend/apps/api/echo"
	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
)

func TestHome(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	assert.Equal(t, "Welcome to EduSpace API!", rec.Body.String())
}

func TestAuthGuards(t *testing.T) {
	app := setup(t)
	fac := createUser(t, "Grace Hopper", "grace@x.edu", "s3cretPass!", user.RoleFaculty)
	facToken := getToken(t, fac)

	tests := []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/api/batches/students",
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "garbage token",
			method:   http.MethodGet,
			path:     "/api/batches/students",
			token:    "garbage",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, errInvalidToken),
		},
		{
			name:     "faculty cannot call admin endpoints",
			method:   http.MethodPost,
			path:     "/api/admin/addFaculty",
			token:    facToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "faculty cannot call student endpoints",
			method:   http.MethodGet,
			path:     "/api/student/my-courses",
			token:    facToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// TestCoursePortalFlow walks the main admin -> faculty -> student path through
// the public API.
func TestCoursePortalFlow(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	admin := createUser(t, "Root", "root@x.edu", "s3cretPass!", user.RoleAdmin)
	adminToken := getToken(t, admin)

	// admin provisions a faculty account
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/addFaculty", adminToken,
		marchallObj(t, user.NewFaculty{FacultyID: "FAC-1", Name: "Grace Hopper", Email: "grace@x.edu", Password: "s3cretPass!", Department: "CSE"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("addFaculty code = %v; body %s", rec.Code, rec.Body.String())
	}
	var facResp AddFacultyResponse
	unmarchallObj(t, rec.Body.Bytes(), &facResp)
	assert.True(t, facResp.NotificationSent)
	assert.Equal(t, "FAC-1", facResp.Faculty.FacultyID)

	// the provisioned faculty member signs in
	req, rec = newRequest(http.MethodPost, "/api/auth/login", marchallObj(t, LoginRequest{Email: "grace@x.edu", Password: "s3cretPass!"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("faculty login code = %v; body %s", rec.Code, rec.Body.String())
	}
	var loginResp TokenResponse
	unmarchallObj(t, rec.Body.Bytes(), &loginResp)
	facToken := loginResp.Token

	// faculty creates a course
	req, rec = newAuthRequest(http.MethodPost, "/api/faculty/create-course", facToken,
		marchallObj(t, course.NewCourse{Title: "Algorithms", Description: "Sorting and searching", Department: "CSE"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create-course code = %v; body %s", rec.Code, rec.Body.String())
	}
	var crsResp CourseResponse
	unmarchallObj(t, rec.Body.Bytes(), &crsResp)
	courseID := crsResp.Course.ID
	if courseID == "" {
		t.Fatal("created course has no id")
	}

	// a student registers and gets enrolled by the faculty
	req, rec = newRequest(http.MethodPost, "/api/auth/register",
		marchallObj(t, user.NewUser{Name: "Ada Lovelace", Email: "ada@x.edu", Password: "s3cretPass!", Role: user.RoleStudent}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("student register code = %v; body %s", rec.Code, rec.Body.String())
	}
	stu, err := usrRepo.GetUserByEmail(ctx, "ada@x.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	stuToken := getToken(t, stu)

	req, rec = newAuthRequest(http.MethodPost, "/api/faculty/course/"+courseID+"/add-student", facToken,
		marchallObj(t, map[string]string{"email": "ada@x.edu"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add-student code = %v; body %s", rec.Code, rec.Body.String())
	}
	var addResp AddStudentResponse
	unmarchallObj(t, rec.Body.Bytes(), &addResp)
	assert.True(t, addResp.NotificationSent)

	// re-adding the same student is a validation error
	req, rec = newAuthRequest(http.MethodPost, "/api/faculty/course/"+courseID+"/add-student", facToken,
		marchallObj(t, map[string]string{"email": "ada@x.edu"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate add-student code = %v; body %s", rec.Code, rec.Body.String())
	}
	var dupResp errResponse
	unmarchallObj(t, rec.Body.Bytes(), &dupResp)
	assert.Equal(t, "email: student is already enrolled in this course", dupResp.Message)

	// the enrolled student sees the course; a stranger does not
	req, rec = newAuthRequest(http.MethodGet, "/api/student/course/"+courseID, stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("student course code = %v; body %s", rec.Code, rec.Body.String())
	}

	stranger := createUser(t, "Tom", "tom@x.edu", "s3cretPass!", user.RoleStudent)
	req, rec = newAuthRequest(http.MethodGet, "/api/student/course/"+courseID, getToken(t, stranger))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, errResponse{Message: course.ErrNotEnrolled.Error()}),
	}, rec)

	// chat room is created lazily with live participants
	req, rec = newAuthRequest(http.MethodGet, "/api/chat/room/"+courseID, stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat room code = %v; body %s", rec.Code, rec.Body.String())
	}
	var roomResp RoomResponse
	unmarchallObj(t, rec.Body.Bytes(), &roomResp)
	assert.ElementsMatch(t, []string{crsResp.Course.FacultyID, stu.ID}, roomResp.Participants)

	req, rec = newAuthRequest(http.MethodPost, "/api/chat/messages/"+courseID, stuToken,
		marchallObj(t, map[string]string{"body": "hello class"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post message code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/chat/messages/"+courseID+"?page=1&limit=10", facToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get messages code = %v; body %s", rec.Code, rec.Body.String())
	}
	var msgsResp MessagesResponse
	unmarchallObj(t, rec.Body.Bytes(), &msgsResp)
	assert.Equal(t, 1, msgsResp.TotalPages)
	assert.Equal(t, 1, msgsResp.CurrentPage)
	if assert.Len(t, msgsResp.Messages, 1) {
		assert.Equal(t, "hello class", msgsResp.Messages[0].Body)
	}

	// assignment lifecycle: add, submit, resubmit rejected, grade
	req, rec = newAuthRequest(http.MethodPost, "/api/faculty/add-assignments", facToken,
		marchallObj(t, map[string]interface{}{
			"courseId": courseID,
			"co":       "CO-1",
			"title":    "Homework 1",
			"due_date": time.Now().Add(72 * time.Hour).UTC(),
		}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add-assignments code = %v; body %s", rec.Code, rec.Body.String())
	}
	var asgResp AssignmentResponse
	unmarchallObj(t, rec.Body.Bytes(), &asgResp)
	asgID := asgResp.Assignment.ID

	submitPath := fmt.Sprintf("/api/student/course/%s/assignment/%s/submit", courseID, asgID)
	req, rec = newUploadRequest(t, submitPath, stuToken, nil, "hw1.pdf", []byte("my answers"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit code = %v; body %s", rec.Code, rec.Body.String())
	}
	var subResp SubmissionResponse
	unmarchallObj(t, rec.Body.Bytes(), &subResp)
	assert.Equal(t, course.SubmissionPending, subResp.Submission.Status)
	assert.NotEmpty(t, subResp.Submission.FileURL)

	req, rec = newUploadRequest(t, submitPath, stuToken, nil, "hw1.pdf", []byte("again"))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, errResponse{Message: course.ErrAlreadySubmitted.Error()}),
	}, rec)

	gradePath := fmt.Sprintf("/api/faculty/course/%s/assignment/%s/grade", courseID, asgID)
	req, rec = newAuthRequest(http.MethodPost, gradePath, facToken,
		marchallObj(t, map[string]interface{}{"studentId": stu.ID, "grade": 90, "feedback": "well done"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("grade code = %v; body %s", rec.Code, rec.Body.String())
	}
	unmarchallObj(t, rec.Body.Bytes(), &subResp)
	assert.Equal(t, course.SubmissionGraded, subResp.Submission.Status)
	if assert.NotNil(t, subResp.Submission.Grade) {
		assert.Equal(t, 90, *subResp.Submission.Grade)
	}

	// materials: faculty uploads, the enrolled student lists
	req, rec = newUploadRequest(t, "/api/faculty/add-materials", facToken,
		map[string]string{"courseId": courseID, "co": "CO-1", "title": "Lecture slides"},
		"slides.pdf", []byte("pdf bytes"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add-materials code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/student/course-materials/"+courseID, stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("course-materials code = %v; body %s", rec.Code, rec.Body.String())
	}
	var matsResp MaterialsResponse
	unmarchallObj(t, rec.Body.Bytes(), &matsResp)
	if assert.Len(t, matsResp.Materials, 1) {
		assert.Equal(t, "Lecture slides", matsResp.Materials[0].Title)
		assert.NotEmpty(t, matsResp.Materials[0].FileURL)
	}
}

func TestStudentBatchImport(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Root", "root@x.edu", "s3cretPass!", user.RoleAdmin)
	adminToken := getToken(t, admin)

	sheet := []byte("S1,Ada Lovelace,ada@x.edu,CSE\nS2,Alan Turing,alan@x.edu,CSE\nS3,,bad@x.edu,CSE")
	req, rec := newUploadRequest(t, "/api/admin/upload-studentbatch", adminToken,
		map[string]string{"batchName": "CSE-2026"}, "roster.csv", sheet)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload-studentbatch code = %v; body %s", rec.Code, rec.Body.String())
	}
	var impResp ImportResponse
	unmarchallObj(t, rec.Body.Bytes(), &impResp)
	assert.ElementsMatch(t, []string{"ada@x.edu", "alan@x.edu"}, impResp.Created)
	if assert.Len(t, impResp.Errors, 1) {
		assert.Equal(t, 3, impResp.Errors[0].Line)
	}
	assert.NotEmpty(t, impResp.AuditURL)

	// any authenticated user can browse batches
	stu, err := usrRepo.GetUserByEmail(context.Background(), "ada@x.edu")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	stuToken := getToken(t, stu)

	req, rec = newAuthRequest(http.MethodGet, "/api/batches/students", stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("batches code = %v; body %s", rec.Code, rec.Body.String())
	}
	var batchesResp BatchesResponse
	unmarchallObj(t, rec.Body.Bytes(), &batchesResp)
	if assert.Len(t, batchesResp.Batches, 1) {
		assert.Equal(t, "CSE-2026", batchesResp.Batches[0].BatchName)
		assert.Len(t, batchesResp.Batches[0].Students, 2)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/batches/emails/CSE-2026", stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("batch emails code = %v; body %s", rec.Code, rec.Body.String())
	}
	var emailsResp BatchEmailsResponse
	unmarchallObj(t, rec.Body.Bytes(), &emailsResp)
	assert.ElementsMatch(t, []string{"ada@x.edu", "alan@x.edu"}, emailsResp.Emails)

	req, rec = newAuthRequest(http.MethodGet, "/api/batches/emails/NOPE", stuToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, errResponse{Message: user.ErrBatchNotFound.Error()}),
	}, rec)
}

func TestDashboards(t *testing.T) {
	app := setup(t)
	admin := createUser(t, "Root", "root@x.edu", "s3cretPass!", user.RoleAdmin)
	fac := createUser(t, "Grace", "grace@x.edu", "s3cretPass!", user.RoleFaculty)

	req, rec := newAuthRequest(http.MethodGet, "/api/dashboard/admin-dashboard", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin dashboard code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/dashboard/admin-dashboard", getToken(t, fac))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, errForbidden),
	}, rec)
}
