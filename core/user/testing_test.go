package user

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/eduspace/backend/core"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*User
	faculty  map[string]*Faculty
	students map[string]*Student
	batches  map[string]*Batch

	failCreateFaculty bool
	failCreateStudent bool
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*User),
		faculty:  make(map[string]*Faculty),
		students: make(map[string]*Student),
		batches:  make(map[string]*Batch),
	}
}

func (r *fakeRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("id-%d", r.seq)
}

func (r *fakeRepo) CheckEmailUniqueness(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateUser(ctx context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr.ID = r.nextID()
	r.users[usr.ID] = &usr
	return usr, nil
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return *u, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByResetToken(ctx context.Context, token string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token == "" {
		return User{}, ErrNotFound
	}
	for _, u := range r.users {
		if u.ResetToken == token {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) UpdateUser(ctx context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	r.users[usr.ID] = &usr
	return usr, nil
}

func (r *fakeRepo) DeleteUsersByID(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

func (r *fakeRepo) CheckFacultyUniqueness(ctx context.Context, facultyID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.faculty {
		if f.FacultyID == facultyID || f.Email == email {
			return ErrFacultyExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateFaculty(ctx context.Context, fac Faculty) (Faculty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateFaculty {
		return Faculty{}, fmt.Errorf("boom")
	}
	fac.ID = r.nextID()
	r.faculty[fac.ID] = &fac
	return fac, nil
}

func (r *fakeRepo) GetFacultyByID(ctx context.Context, facultyID string) (Faculty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.faculty {
		if f.FacultyID == facultyID {
			return *f, nil
		}
	}
	return Faculty{}, ErrNotFound
}

func (r *fakeRepo) CheckStudentUniqueness(ctx context.Context, studentID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.StudentID == studentID || s.Email == email {
			return ErrStudentExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateStudent(ctx context.Context, std Student) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateStudent {
		return Student{}, fmt.Errorf("boom")
	}
	std.ID = r.nextID()
	r.students[std.ID] = &std
	return std, nil
}

func (r *fakeRepo) GetStudentByID(ctx context.Context, studentID string) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.StudentID == studentID {
			return *s, nil
		}
	}
	return Student{}, ErrNotFound
}

func (r *fakeRepo) EnsureBatch(ctx context.Context, batchName string) (Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.BatchName == batchName {
			return *b, nil
		}
	}
	b := Batch{ID: r.nextID(), BatchName: batchName, Students: []BatchEntry{}}
	r.batches[b.ID] = &b
	return b, nil
}

func (r *fakeRepo) GetBatchByName(ctx context.Context, batchName string) (Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.BatchName == batchName {
			return *b, nil
		}
	}
	return Batch{}, ErrBatchNotFound
}

func (r *fakeRepo) QueryAllBatches(ctx context.Context) ([]Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batches := make([]Batch, 0, len(r.batches))
	for _, b := range r.batches {
		batches = append(batches, *b)
	}
	return batches, nil
}

func (r *fakeRepo) AppendBatchEntry(ctx context.Context, batchID string, entry BatchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok {
		return ErrBatchNotFound
	}
	for _, e := range b.Students {
		if e.StudentID == entry.StudentID || e.Email == entry.Email {
			return ErrBatchEntryExists
		}
	}
	b.Students = append(b.Students, entry)
	return nil
}

// recorderMailer records outgoing messages without rendering them.
type recorderMailer struct {
	mu       sync.Mutex
	Sent     []*core.EmailMessage
	FailSend bool
}

var _ core.EmailService = (*recorderMailer)(nil)

func (m *recorderMailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, messages...)
}

func (m *recorderMailer) SendMessage(msg *core.EmailMessage) error {
	if m.FailSend {
		return fmt.Errorf("smtp down")
	}
	m.SendMessages(msg)
	return nil
}

// recorderStorage records uploads and returns fake URLs.
type recorderStorage struct {
	mu      sync.Mutex
	Uploads map[string][]byte
}

var _ core.FileStorage = (*recorderStorage)(nil)

func newRecorderStorage() *recorderStorage {
	return &recorderStorage{Uploads: make(map[string][]byte)}
}

func (s *recorderStorage) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.Uploads[key] = content
	s.mu.Unlock()
	return "https://files.test/" + key, nil
}

type nopLogger struct{}

var _ core.Logger = (*nopLogger)(nil)

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:             true,
		AppName:              "EduSpace",
		FrontendBaseURL:      "http://localhost:3000",
		PasswordResetTimeout: 10 * time.Minute,
	}
}

func newTestService() (*Service, *fakeRepo, *recorderMailer, *recorderStorage) {
	repo := newFakeRepo()
	mailer := &recorderMailer{}
	files := newRecorderStorage()
	svc := NewService(newTestConfig(), repo, mailer, files, nopLogger{})
	return svc, repo, mailer, files
}
