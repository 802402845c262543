package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportStudentRoster(t *testing.T) {
	svc, repo, mailer, files := newTestService()
	ctx := context.Background()

	sheet := strings.Join([]string{
		"S1,Ada Lovelace,ada@x.edu,CSE",
		"S2,,missingname@x.edu,CSE", // blank name: row skipped
		"S3,Alan Turing,alan@x.edu,CSE",
	}, "\n")

	report, err := svc.ImportStudentRoster(ctx, "CSE-2026", "roster.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("ImportStudentRoster() error = %v", err)
	}

	assert.ElementsMatch(t, []string{"ada@x.edu", "alan@x.edu"}, report.Created)
	if assert.Len(t, report.Errors, 1) {
		assert.Equal(t, 2, report.Errors[0].Line)
	}
	assert.NotEmpty(t, report.AuditURL)
	assert.Len(t, files.Uploads, 1, "the original sheet must be stashed")
	assert.Len(t, mailer.Sent, 2, "one welcome email per created account")

	// the bad row must not leave a half-created account behind
	if _, err := repo.GetUserByEmail(ctx, "missingname@x.edu"); err != ErrNotFound {
		t.Errorf("user created for skipped row, err = %v", err)
	}

	batch, err := repo.GetBatchByName(ctx, "CSE-2026")
	if err != nil {
		t.Fatalf("GetBatchByName() error = %v", err)
	}
	assert.Len(t, batch.Students, 2)

	// created accounts can sign in with the temporary password
	if _, err := svc.Authenticate(ctx, "ada@x.edu", rosterTempPassword); err != nil {
		t.Errorf("Authenticate() with temp password error = %v", err)
	}
}

func TestImportStudentRosterMergesIntoExistingBatch(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	first := "S1,Ada Lovelace,ada@x.edu,CSE"
	if _, err := svc.ImportStudentRoster(ctx, "CSE-2026", "first.csv", strings.NewReader(first)); err != nil {
		t.Fatalf("ImportStudentRoster() error = %v", err)
	}

	second := strings.Join([]string{
		"S1,Ada Again,ada2@x.edu,CSE", // duplicate student id in batch
		"S2,Alan Turing,alan@x.edu,CSE",
	}, "\n")
	report, err := svc.ImportStudentRoster(ctx, "CSE-2026", "second.csv", strings.NewReader(second))
	if err != nil {
		t.Fatalf("ImportStudentRoster() error = %v", err)
	}

	assert.Equal(t, []string{"alan@x.edu"}, report.Created)
	assert.Len(t, report.Errors, 1)

	batch, _ := repo.GetBatchByName(ctx, "CSE-2026")
	assert.Len(t, batch.Students, 2, "re-import must merge, not replace")
}

func TestImportStudentRosterRequiresBatchName(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.ImportStudentRoster(context.Background(), "  ", "r.csv", strings.NewReader("S1,A,a@x.edu,CSE")); err == nil {
		t.Error("ImportStudentRoster() accepted a blank batch name")
	}
}

func TestImportFacultyRoster(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	sheet := strings.Join([]string{
		"grace@x.edu,Grace Hopper,xxx,CSE,FAC-1",
		"short,row", // malformed: too few fields
		"edsger@x.edu,Edsger Dijkstra,xxx,CSE,FAC-2",
	}, "\n")

	report, err := svc.ImportFacultyRoster(ctx, "faculty.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("ImportFacultyRoster() error = %v", err)
	}

	assert.ElementsMatch(t, []string{"grace@x.edu", "edsger@x.edu"}, report.Created)
	if assert.Len(t, report.Errors, 1) {
		assert.Equal(t, 2, report.Errors[0].Line)
	}

	fac, err := repo.GetFacultyByID(ctx, "FAC-1")
	if err != nil {
		t.Fatalf("GetFacultyByID() error = %v", err)
	}
	assert.Equal(t, "grace@x.edu", fac.Email)
}

func TestImportFacultyRosterCompensatesOnProfileFailure(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	repo.failCreateFaculty = true

	report, err := svc.ImportFacultyRoster(ctx, "faculty.csv",
		strings.NewReader("grace@x.edu,Grace Hopper,xxx,CSE,FAC-1"))
	if err != nil {
		t.Fatalf("ImportFacultyRoster() error = %v", err)
	}
	assert.Empty(t, report.Created)
	assert.Len(t, report.Errors, 1)

	if _, err := repo.GetUserByEmail(ctx, "grace@x.edu"); err != ErrNotFound {
		t.Errorf("orphaned user left behind, err = %v", err)
	}
}
