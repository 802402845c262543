package mongorepos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduspace/backend/core/course"
)

type courseRepository struct {
	courses   *mongo.Collection
	materials *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *mongo.Database) *courseRepository {
	return &courseRepository{
		courses:   db.Collection("courses"),
		materials: db.Collection("materials"),
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = primitive.NewObjectID().Hex()
	if _, err := repo.courses.InsertOne(ctx, crs); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	if err := repo.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&crs); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) queryCourses(ctx context.Context, filter bson.M) ([]course.Course, error) {
	cursor, err := repo.courses.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []course.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) QueryCoursesByFaculty(ctx context.Context, facultyID string) ([]course.Course, error) {
	return repo.queryCourses(ctx, bson.M{"faculty_id": facultyID})
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	return repo.queryCourses(ctx, bson.M{"student_ids": studentID})
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.courses.ReplaceOne(ctx, bson.M{"_id": crs.ID}, crs)
	if err != nil {
		return course.Course{}, err
	}
	if res.MatchedCount == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) GetMaterialByCourse(ctx context.Context, courseID string) (course.Material, error) {
	var mat course.Material
	if err := repo.materials.FindOne(ctx, bson.M{"course_id": courseID}).Decode(&mat); err != nil {
		if err == mongo.ErrNoDocuments {
			return course.Material{}, course.ErrMaterialNotFound
		}
		return course.Material{}, err
	}
	return mat, nil
}

func (repo *courseRepository) SaveMaterial(ctx context.Context, mat course.Material) (course.Material, error) {
	if mat.ID == "" {
		mat.ID = primitive.NewObjectID().Hex()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.materials.ReplaceOne(ctx, bson.M{"course_id": mat.CourseID}, mat, opts); err != nil {
		return course.Material{}, err
	}
	return mat, nil
}
