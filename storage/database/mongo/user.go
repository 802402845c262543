package mongorepos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduspace/backend/core/user"
)

type userRepository struct {
	users    *mongo.Collection
	faculty  *mongo.Collection
	students *mongo.Collection
	batches  *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{
		users:    db.Collection("users"),
		faculty:  db.Collection("faculty"),
		students: db.Collection("students"),
		batches:  db.Collection("batches"),
	}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	n, err := repo.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = primitive.NewObjectID().Hex()
	if _, err := repo.users.InsertOne(ctx, usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.users.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"email": email})
}

func (repo *userRepository) GetUserByResetToken(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, bson.M{"reset_token": token})
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	// whole-document replace; cleared optional fields drop out via omitempty
	res, err := repo.users.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		return user.User{}, err
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	_, err := repo.users.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (repo *userRepository) CheckFacultyUniqueness(ctx context.Context, facultyID, email string) error {
	n, err := repo.faculty.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"faculty_id": facultyID},
		bson.M{"email": email},
	}})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrFacultyExists
	}
	return nil
}

func (repo *userRepository) CreateFaculty(ctx context.Context, fac user.Faculty) (user.Faculty, error) {
	fac.ID = primitive.NewObjectID().Hex()
	if _, err := repo.faculty.InsertOne(ctx, fac); err != nil {
		return user.Faculty{}, err
	}
	return fac, nil
}

func (repo *userRepository) GetFacultyByID(ctx context.Context, facultyID string) (user.Faculty, error) {
	var fac user.Faculty
	if err := repo.faculty.FindOne(ctx, bson.M{"faculty_id": facultyID}).Decode(&fac); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.Faculty{}, user.ErrNotFound
		}
		return user.Faculty{}, err
	}
	return fac, nil
}

func (repo *userRepository) CheckStudentUniqueness(ctx context.Context, studentID, email string) error {
	n, err := repo.students.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"student_id": studentID},
		bson.M{"email": email},
	}})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrStudentExists
	}
	return nil
}

func (repo *userRepository) CreateStudent(ctx context.Context, std user.Student) (user.Student, error) {
	std.ID = primitive.NewObjectID().Hex()
	if _, err := repo.students.InsertOne(ctx, std); err != nil {
		return user.Student{}, err
	}
	return std, nil
}

func (repo *userRepository) GetStudentByID(ctx context.Context, studentID string) (user.Student, error) {
	var std user.Student
	if err := repo.students.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&std); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.Student{}, user.ErrNotFound
		}
		return user.Student{}, err
	}
	return std, nil
}

func (repo *userRepository) EnsureBatch(ctx context.Context, batchName string) (user.Batch, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        primitive.NewObjectID().Hex(),
		"batch_name": batchName,
		"students":   bson.A{},
	}}

	var batch user.Batch
	if err := repo.batches.FindOneAndUpdate(ctx, bson.M{"batch_name": batchName}, update, opts).Decode(&batch); err != nil {
		return user.Batch{}, err
	}
	return batch, nil
}

func (repo *userRepository) GetBatchByName(ctx context.Context, batchName string) (user.Batch, error) {
	var batch user.Batch
	if err := repo.batches.FindOne(ctx, bson.M{"batch_name": batchName}).Decode(&batch); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.Batch{}, user.ErrBatchNotFound
		}
		return user.Batch{}, err
	}
	return batch, nil
}

func (repo *userRepository) QueryAllBatches(ctx context.Context) ([]user.Batch, error) {
	cursor, err := repo.batches.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	batches := []user.Batch{}
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (repo *userRepository) AppendBatchEntry(ctx context.Context, batchID string, entry user.BatchEntry) error {
	// embedded-array uniqueness is enforced here, not by the storage layer
	n, err := repo.batches.CountDocuments(ctx, bson.M{
		"_id": batchID,
		"students": bson.M{"$elemMatch": bson.M{"$or": bson.A{
			bson.M{"student_id": entry.StudentID},
			bson.M{"email": entry.Email},
		}}},
	})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrBatchEntryExists
	}

	res, err := repo.batches.UpdateOne(ctx, bson.M{"_id": batchID}, bson.M{"$push": bson.M{"students": entry}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return user.ErrBatchNotFound
	}
	return nil
}
