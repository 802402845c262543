package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/eduspace/backend/core/user"
)

type userRepository struct {
	users    *userTable
	faculty  *facultyTable
	students *studentTable
	batches  *batchTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{
		users:    db.user,
		faculty:  db.faculty,
		students: db.student,
		batches:  db.batch,
	}
}

func (repo *userRepository) queryUsers() []user.User {
	users := make([]user.User, 0, len(repo.users.table))
	for _, u := range repo.users.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	repo.users.RLock()
	defer repo.users.RUnlock()

	for _, usr := range repo.queryUsers() {
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.users.Lock()
	defer repo.users.Unlock()

	usr.ID = uuid.New().String()
	repo.users.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	if usr, ok := repo.users.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	for _, usr := range repo.queryUsers() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByResetToken(ctx context.Context, token string) (user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	if token == "" {
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.queryUsers() {
		if usr.ResetToken == token {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.users.Lock()
	defer repo.users.Unlock()

	if _, ok := repo.users.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.users.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.users.Lock()
	defer repo.users.Unlock()

	for _, id := range ids {
		delete(repo.users.table, id)
	}
	return nil
}

func (repo *userRepository) CheckFacultyUniqueness(ctx context.Context, facultyID, email string) error {
	repo.faculty.RLock()
	defer repo.faculty.RUnlock()

	for _, fac := range repo.faculty.table {
		if fac.FacultyID == facultyID || fac.Email == email {
			return user.ErrFacultyExists
		}
	}
	return nil
}

func (repo *userRepository) CreateFaculty(ctx context.Context, fac user.Faculty) (user.Faculty, error) {
	repo.faculty.Lock()
	defer repo.faculty.Unlock()

	fac.ID = uuid.New().String()
	repo.faculty.table[fac.ID] = &fac
	return fac, nil
}

func (repo *userRepository) GetFacultyByID(ctx context.Context, facultyID string) (user.Faculty, error) {
	repo.faculty.RLock()
	defer repo.faculty.RUnlock()

	for _, fac := range repo.faculty.table {
		if fac.FacultyID == facultyID {
			return *fac, nil
		}
	}
	return user.Faculty{}, user.ErrNotFound
}

func (repo *userRepository) CheckStudentUniqueness(ctx context.Context, studentID, email string) error {
	repo.students.RLock()
	defer repo.students.RUnlock()

	for _, std := range repo.students.table {
		if std.StudentID == studentID || std.Email == email {
			return user.ErrStudentExists
		}
	}
	return nil
}

func (repo *userRepository) CreateStudent(ctx context.Context, std user.Student) (user.Student, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	std.ID = uuid.New().String()
	repo.students.table[std.ID] = &std
	return std, nil
}

func (repo *userRepository) GetStudentByID(ctx context.Context, studentID string) (user.Student, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	for _, std := range repo.students.table {
		if std.StudentID == studentID {
			return *std, nil
		}
	}
	return user.Student{}, user.ErrNotFound
}

func (repo *userRepository) EnsureBatch(ctx context.Context, batchName string) (user.Batch, error) {
	repo.batches.Lock()
	defer repo.batches.Unlock()

	for _, batch := range repo.batches.table {
		if batch.BatchName == batchName {
			return *batch, nil
		}
	}
	batch := user.Batch{
		ID:        uuid.New().String(),
		BatchName: batchName,
		Students:  []user.BatchEntry{},
	}
	repo.batches.table[batch.ID] = &batch
	return batch, nil
}

func (repo *userRepository) GetBatchByName(ctx context.Context, batchName string) (user.Batch, error) {
	repo.batches.RLock()
	defer repo.batches.RUnlock()

	for _, batch := range repo.batches.table {
		if batch.BatchName == batchName {
			return *batch, nil
		}
	}
	return user.Batch{}, user.ErrBatchNotFound
}

func (repo *userRepository) QueryAllBatches(ctx context.Context) ([]user.Batch, error) {
	repo.batches.RLock()
	defer repo.batches.RUnlock()

	batches := make([]user.Batch, 0, len(repo.batches.table))
	for _, batch := range repo.batches.table {
		batches = append(batches, *batch)
	}
	return batches, nil
}

func (repo *userRepository) AppendBatchEntry(ctx context.Context, batchID string, entry user.BatchEntry) error {
	repo.batches.Lock()
	defer repo.batches.Unlock()

	batch, ok := repo.batches.table[batchID]
	if !ok {
		return user.ErrBatchNotFound
	}
	for _, e := range batch.Students {
		if e.StudentID == entry.StudentID || e.Email == entry.Email {
			return user.ErrBatchEntryExists
		}
	}
	batch.Students = append(batch.Students, entry)
	return nil
}
