package user

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/eduspace/backend/core"
)

// Imported accounts start with a fixed temporary password; the welcome email
// asks the owner to change it on first login.
const rosterTempPassword = "Edu$pace2024"

// faculty sheet columns: email, name, password placeholder, department, faculty id
// student sheet columns: student id, name, email, department
const (
	facultyRowLen = 5
	studentRowLen = 4
)

type (
	// RowError reports a single roster row that was skipped; other rows are
	// unaffected.
	RowError struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	}

	// ImportReport aggregates per-row outcomes of a roster import. Rows are
	// independent: earlier successes are never rolled back by later failures.
	ImportReport struct {
		Created  []string   `json:"created"` // emails of created accounts
		Errors   []RowError `json:"errors"`
		AuditURL string     `json:"auditUrl,omitempty"`
	}
)

// ImportFacultyRoster creates faculty accounts from an uploaded CSV sheet.
// The original sheet is copied to object storage first as an audit trail.
func (svc *Service) ImportFacultyRoster(ctx context.Context, filename string, r io.Reader) (ImportReport, error) {
	data, auditURL, err := svc.stashRoster(ctx, filename, r)
	if err != nil {
		return ImportReport{}, err
	}
	report := ImportReport{Created: []string{}, Errors: []RowError{}, AuditURL: auditURL}

	rows, err := readRoster(data)
	if err != nil {
		return ImportReport{}, err
	}
	for i, row := range rows {
		line := i + 1
		if len(row) < facultyRowLen {
			report.addError(line, fmt.Sprintf("expected %d fields, got %d", facultyRowLen, len(row)))
			continue
		}
		nf := NewFaculty{
			Email:      core.CleanString(row[0], true /* lower */),
			Name:       core.CleanString(row[1]),
			Password:   rosterTempPassword, // row[2] is a placeholder
			Department: core.CleanString(row[3]),
			FacultyID:  core.CleanString(row[4]),
		}
		if msg, ok := blankField(map[string]string{
			"email": nf.Email, "name": nf.Name, "department": nf.Department, "id": nf.FacultyID,
		}); !ok {
			report.addError(line, msg)
			continue
		}
		if err := svc.repo.CheckEmailUniqueness(ctx, nf.Email); err != nil {
			report.addError(line, err.Error())
			continue
		}
		if err := svc.repo.CheckFacultyUniqueness(ctx, nf.FacultyID, nf.Email); err != nil {
			report.addError(line, err.Error())
			continue
		}

		usr, err := svc.Register(ctx, NewUser{Name: nf.Name, Email: nf.Email, Password: nf.Password, Role: RoleFaculty})
		if err != nil {
			report.addError(line, err.Error())
			continue
		}
		if _, err := svc.repo.CreateFaculty(ctx, Faculty{
			FacultyID:  nf.FacultyID,
			Name:       nf.Name,
			Email:      nf.Email,
			Department: nf.Department,
		}); err != nil {
			svc.compensateUser(ctx, usr)
			report.addError(line, err.Error())
			continue
		}

		svc.mailSvc.SendMessages(svc.welcomeMessage(usr, "welcome-faculty", rosterTempPassword))
		report.Created = append(report.Created, usr.Email)
	}
	return report, nil
}

// ImportStudentRoster creates student accounts from an uploaded CSV sheet and
// appends them to the named batch. Re-importing an existing batch name merges
// into its roster; duplicate ids/emails within the batch are rejected per row.
func (svc *Service) ImportStudentRoster(ctx context.Context, batchName, filename string, r io.Reader) (ImportReport, error) {
	batchName = core.CleanString(batchName)
	if batchName == "" {
		return ImportReport{}, core.NewValidationError(nil, core.FieldError{Field: "batchName", Error: "this field is required"})
	}

	data, auditURL, err := svc.stashRoster(ctx, filename, r)
	if err != nil {
		return ImportReport{}, err
	}
	report := ImportReport{Created: []string{}, Errors: []RowError{}, AuditURL: auditURL}

	batch, err := svc.repo.EnsureBatch(ctx, batchName)
	if err != nil {
		return ImportReport{}, pkgerrors.Wrap(err, "ensuring batch")
	}

	rows, err := readRoster(data)
	if err != nil {
		return ImportReport{}, err
	}
	for i, row := range rows {
		line := i + 1
		if len(row) < studentRowLen {
			report.addError(line, fmt.Sprintf("expected %d fields, got %d", studentRowLen, len(row)))
			continue
		}
		std := Student{
			StudentID:  core.CleanString(row[0]),
			Name:       core.CleanString(row[1]),
			Email:      core.CleanString(row[2], true /* lower */),
			Department: core.CleanString(row[3]),
			BatchID:    batch.ID,
		}
		if msg, ok := blankField(map[string]string{
			"id": std.StudentID, "name": std.Name, "email": std.Email, "department": std.Department,
		}); !ok {
			report.addError(line, msg)
			continue
		}
		if err := svc.repo.CheckEmailUniqueness(ctx, std.Email); err != nil {
			report.addError(line, err.Error())
			continue
		}
		if err := svc.repo.CheckStudentUniqueness(ctx, std.StudentID, std.Email); err != nil {
			report.addError(line, err.Error())
			continue
		}

		usr, err := svc.Register(ctx, NewUser{Name: std.Name, Email: std.Email, Password: rosterTempPassword, Role: RoleStudent})
		if err != nil {
			report.addError(line, err.Error())
			continue
		}
		if _, err := svc.repo.CreateStudent(ctx, std); err != nil {
			svc.compensateUser(ctx, usr)
			report.addError(line, err.Error())
			continue
		}
		if err := svc.repo.AppendBatchEntry(ctx, batch.ID, BatchEntry{
			StudentID:  std.StudentID,
			Name:       std.Name,
			Email:      std.Email,
			Department: std.Department,
		}); err != nil {
			report.addError(line, err.Error())
			continue
		}

		svc.mailSvc.SendMessages(svc.welcomeMessage(usr, "welcome-student", rosterTempPassword))
		report.Created = append(report.Created, usr.Email)
	}
	return report, nil
}

// stashRoster buffers the uploaded sheet and stores the original copy in
// object storage before any row is parsed.
func (svc *Service) stashRoster(ctx context.Context, filename string, r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", pkgerrors.Wrap(err, "reading roster upload")
	}

	key := fmt.Sprintf("rosters/%s-%s", time.Now().UTC().Format("20060102T150405"), filename)
	url, err := svc.files.Upload(ctx, key, "text/csv", bytes.NewReader(data))
	if err != nil {
		return nil, "", pkgerrors.Wrap(err, "storing roster audit copy")
	}
	return data, url, nil
}

func (svc *Service) compensateUser(ctx context.Context, usr User) {
	if err := svc.repo.DeleteUsersByID(ctx, usr.ID); err != nil {
		svc.logger.Error("compensating user delete failed", err)
	}
}

func readRoster(data []byte) ([][]string, error) {
	rdr := csv.NewReader(bytes.NewReader(data))
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true
	rows, err := rdr.ReadAll()
	if err != nil {
		return nil, core.NewValidationError(pkgerrors.Wrap(err, "malformed CSV"))
	}
	return rows, nil
}

func blankField(fields map[string]string) (string, bool) {
	for name, val := range fields {
		if val == "" {
			return name + " is required", false
		}
	}
	return "", true
}

func (r *ImportReport) addError(line int, msg string) {
	r.Errors = append(r.Errors, RowError{Line: line, Message: msg})
}
