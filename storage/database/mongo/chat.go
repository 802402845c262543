package mongorepos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduspace/backend/core/chat"
)

type chatRepository struct {
	rooms    *mongo.Collection
	messages *mongo.Collection
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *mongo.Database) *chatRepository {
	return &chatRepository{
		rooms:    db.Collection("chatrooms"),
		messages: db.Collection("messages"),
	}
}

func (repo *chatRepository) GetRoomByCourse(ctx context.Context, courseID string) (chat.Room, error) {
	var room chat.Room
	if err := repo.rooms.FindOne(ctx, bson.M{"course_id": courseID}).Decode(&room); err != nil {
		if err == mongo.ErrNoDocuments {
			return chat.Room{}, chat.ErrRoomNotFound
		}
		return chat.Room{}, err
	}
	return room, nil
}

func (repo *chatRepository) CreateRoom(ctx context.Context, room chat.Room) (chat.Room, error) {
	room.ID = primitive.NewObjectID().Hex()
	if _, err := repo.rooms.InsertOne(ctx, room); err != nil {
		return chat.Room{}, err
	}
	return room, nil
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	msg.ID = primitive.NewObjectID().Hex()
	if _, err := repo.messages.InsertOne(ctx, msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

func (repo *chatRepository) QueryMessages(ctx context.Context, courseID string, offset, limit int) ([]chat.Message, int, error) {
	filter := bson.M{"course_id": courseID}

	total, err := repo.messages.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"sent_at": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := repo.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	msgs := []chat.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, 0, err
	}
	return msgs, int(total), nil
}
