package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/eduspace/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrFacultyExists      = errors.New("a faculty member with this id or email already exists")
	ErrStudentExists      = errors.New("a student with this id or email already exists")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchEntryExists   = errors.New("a student with this id or email already exists in this batch")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByResetToken(ctx context.Context, token string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error

		CheckFacultyUniqueness(ctx context.Context, facultyID, email string) error
		CreateFaculty(ctx context.Context, fac Faculty) (Faculty, error)
		GetFacultyByID(ctx context.Context, facultyID string) (Faculty, error)

		CheckStudentUniqueness(ctx context.Context, studentID, email string) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, studentID string) (Student, error)

		EnsureBatch(ctx context.Context, batchName string) (Batch, error)
		GetBatchByName(ctx context.Context, batchName string) (Batch, error)
		QueryAllBatches(ctx context.Context) ([]Batch, error)
		// AppendBatchEntry rejects entries whose id or email is already present
		// in the batch roster; embedded-array uniqueness is an application
		// invariant, not a storage guarantee.
		AppendBatchEntry(ctx context.Context, batchID string, entry BatchEntry) error
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
		files   core.FileStorage
		logger  core.Logger
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, files core.FileStorage, logger core.Logger) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
		files:   files,
		logger:  logger,
	}
}

func (svc *Service) checkEmailUniqueness(email string) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) checkFacultyUniqueness(facultyID, email string) error {
	if err := svc.repo.CheckFacultyUniqueness(context.Background(), facultyID, email); err != nil {
		if err == ErrFacultyExists {
			return core.NewValidationError(err, core.FieldError{Field: "faculty_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new User account.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks the given credentials against the stored hash.
// It fails with ErrNotFound for an unknown email and ErrInvalidCredentials
// for a bad password.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// RequestPasswordReset stores a short-lived reset token on the user and mails
// it. The dispatch runs synchronously; a dispatch failure is returned to the
// caller even though the token was stored.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}

	token, err := makeResetToken()
	if err != nil {
		return pkgerrors.Wrap(err, "generating reset token")
	}
	usr.ResetToken = token
	usr.ResetTokenExpiry = nowFunc().UTC().Add(svc.conf.PasswordResetTimeout)
	usr.UpdatedAt = time.Now().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return pkgerrors.Wrap(err, "storing reset token")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name     string
			ResetURL string
		}{usr.Name, svc.conf.FrontendBaseURL + "/reset-password/" + token},
	}
	return svc.mailSvc.SendMessage(msg)
}

// ResetPassword consumes a reset token: the token is accepted exactly once
// while unexpired, then both token fields are cleared and the hash replaced.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	if err := rp.Validate(); err != nil {
		return err
	}

	usr, err := svc.repo.GetUserByResetToken(ctx, rp.Token)
	if err != nil {
		if err == ErrNotFound {
			return ErrInvalidResetToken
		}
		return err
	}
	if nowFunc().UTC().After(usr.ResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.ResetToken = ""
	usr.ResetTokenExpiry = time.Time{}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// AddFaculty provisions a faculty User and its institutional profile as an
// all-or-nothing unit: if the profile write fails the User is deleted again.
// The returned bool reports whether the welcome email was dispatched.
func (svc *Service) AddFaculty(ctx context.Context, nf NewFaculty) (Faculty, bool, error) {
	usr, err := svc.Register(ctx, NewUser{
		Name:     nf.Name,
		Email:    nf.Email,
		Password: nf.Password,
		Role:     RoleFaculty,
	})
	if err != nil {
		return Faculty{}, false, pkgerrors.Wrap(err, "creating faculty user")
	}

	fac, err := svc.repo.CreateFaculty(ctx, Faculty{
		FacultyID:  nf.FacultyID,
		Name:       nf.Name,
		Email:      nf.Email,
		Department: nf.Department,
	})
	if err != nil {
		// compensate: do not leave an orphaned User behind
		if delErr := svc.repo.DeleteUsersByID(ctx, usr.ID); delErr != nil {
			svc.logger.Error("compensating faculty user delete failed", delErr)
		}
		return Faculty{}, false, pkgerrors.Wrap(err, "creating faculty profile")
	}

	notified := true
	if err := svc.mailSvc.SendMessage(svc.welcomeMessage(usr, "welcome-faculty", "")); err != nil {
		svc.logger.Error("sending faculty welcome email", err)
		notified = false
	}
	return fac, notified, nil
}

func (svc *Service) FacultyByID(ctx context.Context, facultyID string) (Faculty, error) {
	return svc.repo.GetFacultyByID(ctx, facultyID)
}

func (svc *Service) StudentByID(ctx context.Context, studentID string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, studentID)
}

func (svc *Service) Batches(ctx context.Context) ([]Batch, error) {
	return svc.repo.QueryAllBatches(ctx)
}

// BatchEmails returns the email of every student in the named batch.
func (svc *Service) BatchEmails(ctx context.Context, batchName string) ([]string, error) {
	batch, err := svc.repo.GetBatchByName(ctx, batchName)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(batch.Students))
	for _, s := range batch.Students {
		emails = append(emails, s.Email)
	}
	return emails, nil
}

func (svc *Service) welcomeMessage(usr User, template, tempPassword string) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: template,
		TemplateData: struct {
			Name         string
			Email        string
			TempPassword string
		}{usr.Name, usr.Email, tempPassword},
	}
}
