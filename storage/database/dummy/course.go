package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/eduspace/backend/core/course"
)

type courseRepository struct {
	courses   *courseTable
	materials *materialTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{
		courses:   db.course,
		materials: db.material,
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	crs.ID = uuid.New().String()
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := []course.Course{}
	for _, crs := range repo.courses.table {
		if crs.FacultyID == facultyID {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := []course.Course{}
	for _, crs := range repo.courses.table {
		if crs.IsEnrolled(studentID) {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	if _, ok := repo.courses.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetMaterialByCourse(ctx context.Context, courseID string) (course.Material, error) {
	repo.materials.RLock()
	defer repo.materials.RUnlock()

	for _, mat := range repo.materials.table {
		if mat.CourseID == courseID {
			return *mat, nil
		}
	}
	return course.Material{}, course.ErrMaterialNotFound
}

func (repo *courseRepository) SaveMaterial(ctx context.Context, mat course.Material) (course.Material, error) {
	repo.materials.Lock()
	defer repo.materials.Unlock()

	if mat.ID == "" {
		mat.ID = uuid.New().String()
	}
	repo.materials.table[mat.ID] = &mat
	return mat, nil
}
