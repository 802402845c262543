package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/eduspace/backend/core"
	"github.com/eduspace/backend/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("course not found")
	ErrNotOwner           = errors.New("unauthorized access to the course")
	ErrNotEnrolled        = errors.New("you are not enrolled in this course")
	ErrNotMember          = errors.New("access denied: not a member of this course")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("assignment already submitted")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]Course, error)
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		// UpdateCourse replaces the whole course document; the parent is the
		// sole unit of mutation for its embedded children.
		UpdateCourse(ctx context.Context, crs Course) (Course, error)

		GetMaterialByCourse(ctx context.Context, courseID string) (Material, error)
		SaveMaterial(ctx context.Context, mat Material) (Material, error)
	}

	// UserDirectory resolves enrollment candidates; satisfied by *user.Service.
	UserDirectory interface {
		GetByEmail(ctx context.Context, email string) (user.User, error)
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		users   UserDirectory
		mailSvc core.EmailService
		files   core.FileStorage
		logger  core.Logger
	}

	// EnrolledStudent summarizes one successful enrollment; Notified reports
	// the email dispatch outcome separately from the enrollment itself.
	EnrolledStudent struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Notified bool   `json:"notified"`
	}

	EnrollmentError struct {
		Email   string `json:"email"`
		Message string `json:"message"`
	}

	// EnrollmentResult aggregates per-item outcomes; one bad email never
	// aborts the rest.
	EnrollmentResult struct {
		Enrolled []EnrolledStudent `json:"enrolled"`
		Errors   []EnrollmentError `json:"errors"`
	}
)

func NewService(conf *core.Config, repo Repository, users UserDirectory, mailSvc core.EmailService, files core.FileStorage, logger core.Logger) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		users:   users,
		mailSvc: mailSvc,
		files:   files,
		logger:  logger,
	}
}

// Create creates a course owned by the calling faculty member.
func (svc *Service) Create(ctx context.Context, facultyID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Title:       nc.Title,
		Description: nc.Description,
		Department:  nc.Department,
		FacultyID:   facultyID,
		StudentIDs:  []string{},
		Assignments: []Assignment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) ByFaculty(ctx context.Context, facultyID string) ([]Course, error) {
	return svc.repo.QueryCoursesByFaculty(ctx, facultyID)
}

func (svc *Service) ByStudent(ctx context.Context, studentID string) ([]Course, error) {
	return svc.repo.QueryCoursesByStudent(ctx, studentID)
}

func (svc *Service) Get(ctx context.Context, courseID string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, courseID)
}

// GetOwned returns the course iff the caller is its owning faculty member.
func (svc *Service) GetOwned(ctx context.Context, courseID, facultyID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if crs.FacultyID != facultyID {
		return Course{}, ErrNotOwner
	}
	return crs, nil
}

// GetForStudent returns the course iff the caller is enrolled in it.
func (svc *Service) GetForStudent(ctx context.Context, courseID, studentID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if !crs.IsEnrolled(studentID) {
		return Course{}, ErrNotEnrolled
	}
	return crs, nil
}

// EnrollStudents resolves each candidate email to a student account and
// appends it to the course roster. Failures are recorded per item; each
// success is persisted before its notification email is dispatched.
func (svc *Service) EnrollStudents(ctx context.Context, facultyID, courseID string, emails []string) (EnrollmentResult, error) {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return EnrollmentResult{}, err
	}

	res := EnrollmentResult{Enrolled: []EnrolledStudent{}, Errors: []EnrollmentError{}}
	for _, email := range emails {
		email = core.CleanString(email, true /* lower */)

		usr, err := svc.users.GetByEmail(ctx, email)
		if err != nil || !usr.IsStudent() {
			res.Errors = append(res.Errors, EnrollmentError{Email: email, Message: "student not found or invalid role"})
			continue
		}
		if crs.IsEnrolled(usr.ID) {
			res.Errors = append(res.Errors, EnrollmentError{Email: email, Message: "student is already enrolled in this course"})
			continue
		}

		crs.StudentIDs = append(crs.StudentIDs, usr.ID)
		crs.UpdatedAt = time.Now().UTC()
		if crs, err = svc.repo.UpdateCourse(ctx, crs); err != nil {
			return res, pkgerrors.Wrap(err, "persisting enrollment")
		}

		notified := true
		if err := svc.mailSvc.SendMessage(svc.enrollmentMessage(usr, crs)); err != nil {
			svc.logger.Error("sending enrollment email", err)
			notified = false
		}
		res.Enrolled = append(res.Enrolled, EnrolledStudent{ID: usr.ID, Name: usr.Name, Email: usr.Email, Notified: notified})
	}
	return res, nil
}

// AddAssignment appends an assignment to the course; the embedded child gets
// a stable generated id.
func (svc *Service) AddAssignment(ctx context.Context, facultyID, courseID string, na NewAssignment) (Assignment, error) {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return Assignment{}, err
	}

	asg := Assignment{
		ID:          uuid.New().String(),
		CO:          na.CO,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		Submissions: []Submission{},
	}
	crs.Assignments = append(crs.Assignments, asg)
	crs.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateCourse(ctx, crs); err != nil {
		return Assignment{}, pkgerrors.Wrap(err, "persisting assignment")
	}
	return asg, nil
}

func (svc *Service) Assignments(ctx context.Context, facultyID, courseID string) ([]Assignment, error) {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return nil, err
	}
	return crs.Assignments, nil
}

func (svc *Service) DeleteAssignment(ctx context.Context, facultyID, courseID, assignmentID string) error {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return err
	}

	idx := crs.assignmentIndex(assignmentID)
	if idx < 0 {
		return ErrAssignmentNotFound
	}
	crs.Assignments = append(crs.Assignments[:idx], crs.Assignments[idx+1:]...)
	crs.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateCourse(ctx, crs)
	return err
}

// AddMaterial uploads the file to object storage and appends an entry to the
// course's material document.
func (svc *Service) AddMaterial(ctx context.Context, facultyID, courseID string, nm NewMaterial, filename, contentType string, file io.Reader) (MaterialEntry, error) {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return MaterialEntry{}, err
	}

	key := fmt.Sprintf("materials/%s/%s-%s", crs.ID, uuid.New().String(), filename)
	url, err := svc.files.Upload(ctx, key, contentType, file)
	if err != nil {
		return MaterialEntry{}, pkgerrors.Wrap(err, "uploading material file")
	}

	mat, err := svc.repo.GetMaterialByCourse(ctx, crs.ID)
	if err != nil {
		if err != ErrMaterialNotFound {
			return MaterialEntry{}, err
		}
		mat = Material{CourseID: crs.ID, Materials: []MaterialEntry{}}
	}

	entry := MaterialEntry{
		ID:          uuid.New().String(),
		CO:          nm.CO,
		Title:       nm.Title,
		Description: nm.Description,
		FileURL:     url,
		CreatedAt:   time.Now().UTC(),
	}
	mat.Materials = append(mat.Materials, entry)
	if _, err := svc.repo.SaveMaterial(ctx, mat); err != nil {
		return MaterialEntry{}, pkgerrors.Wrap(err, "persisting material")
	}
	return entry, nil
}

// MaterialsFor lists the course materials for any course member (owning
// faculty or enrolled student).
func (svc *Service) MaterialsFor(ctx context.Context, userID, courseID string) ([]MaterialEntry, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !crs.IsMember(userID) {
		return nil, ErrNotMember
	}

	mat, err := svc.repo.GetMaterialByCourse(ctx, courseID)
	if err != nil {
		if err == ErrMaterialNotFound {
			return []MaterialEntry{}, nil
		}
		return nil, err
	}
	return mat.Materials, nil
}

// DeleteMaterial locates the entry by its generated id and splices it out.
func (svc *Service) DeleteMaterial(ctx context.Context, facultyID, courseID, materialID string) error {
	if _, err := svc.GetOwned(ctx, courseID, facultyID); err != nil {
		return err
	}

	mat, err := svc.repo.GetMaterialByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	for i := range mat.Materials {
		if mat.Materials[i].ID == materialID {
			mat.Materials = append(mat.Materials[:i], mat.Materials[i+1:]...)
			_, err = svc.repo.SaveMaterial(ctx, mat)
			return err
		}
	}
	return ErrMaterialNotFound
}

// Submit records a student's assignment submission; one submission per
// student per assignment.
func (svc *Service) Submit(ctx context.Context, studentID, courseID, assignmentID, filename, contentType string, file io.Reader) (Submission, error) {
	crs, err := svc.GetForStudent(ctx, courseID, studentID)
	if err != nil {
		return Submission{}, err
	}

	idx := crs.assignmentIndex(assignmentID)
	if idx < 0 {
		return Submission{}, ErrAssignmentNotFound
	}
	for _, sub := range crs.Assignments[idx].Submissions {
		if sub.StudentID == studentID {
			return Submission{}, ErrAlreadySubmitted
		}
	}

	key := fmt.Sprintf("submissions/%s/%s/%s-%s", courseID, assignmentID, studentID, filename)
	url, err := svc.files.Upload(ctx, key, contentType, file)
	if err != nil {
		return Submission{}, pkgerrors.Wrap(err, "uploading submission file")
	}

	sub := Submission{
		StudentID:   studentID,
		SubmittedAt: time.Now().UTC(),
		FileURL:     url,
		Status:      SubmissionPending,
	}
	crs.Assignments[idx].Submissions = append(crs.Assignments[idx].Submissions, sub)
	crs.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateCourse(ctx, crs); err != nil {
		return Submission{}, pkgerrors.Wrap(err, "persisting submission")
	}
	return sub, nil
}

// Grade marks a submission as graded with a 0-100 grade and optional feedback.
func (svc *Service) Grade(ctx context.Context, facultyID, courseID, assignmentID, studentID string, g Grading) (Submission, error) {
	crs, err := svc.GetOwned(ctx, courseID, facultyID)
	if err != nil {
		return Submission{}, err
	}

	idx := crs.assignmentIndex(assignmentID)
	if idx < 0 {
		return Submission{}, ErrAssignmentNotFound
	}
	subs := crs.Assignments[idx].Submissions
	for i := range subs {
		if subs[i].StudentID == studentID {
			grade := g.Grade
			subs[i].Grade = &grade
			subs[i].Feedback = g.Feedback
			subs[i].Status = SubmissionGraded
			crs.UpdatedAt = time.Now().UTC()
			if _, err := svc.repo.UpdateCourse(ctx, crs); err != nil {
				return Submission{}, pkgerrors.Wrap(err, "persisting grade")
			}
			return subs[i], nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func (svc *Service) enrollmentMessage(usr user.User, crs Course) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Enrolled in " + crs.Title,
		TemplateName: "enrollment",
		TemplateData: struct {
			Name        string
			CourseTitle string
			Department  string
		}{usr.Name, crs.Title, crs.Department},
	}
}
