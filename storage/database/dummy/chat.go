package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eduspace/backend/core/chat"
)

type chatRepository struct {
	rooms    *roomTable
	messages *messageTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{
		rooms:    db.room,
		messages: db.message,
	}
}

func (repo *chatRepository) GetRoomByCourse(ctx context.Context, courseID string) (chat.Room, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()

	for _, room := range repo.rooms.table {
		if room.CourseID == courseID {
			return *room, nil
		}
	}
	return chat.Room{}, chat.ErrRoomNotFound
}

func (repo *chatRepository) CreateRoom(ctx context.Context, room chat.Room) (chat.Room, error) {
	repo.rooms.Lock()
	defer repo.rooms.Unlock()

	room.ID = uuid.New().String()
	repo.rooms.table[room.ID] = &room
	return room, nil
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	repo.messages.Lock()
	defer repo.messages.Unlock()

	msg.ID = uuid.New().String()
	repo.messages.table[msg.ID] = &msg
	return msg, nil
}

func (repo *chatRepository) QueryMessages(ctx context.Context, courseID string, offset, limit int) ([]chat.Message, int, error) {
	repo.messages.RLock()
	defer repo.messages.RUnlock()

	all := []chat.Message{}
	for _, msg := range repo.messages.table {
		if msg.CourseID == courseID {
			all = append(all, *msg)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SentAt.Before(all[j].SentAt) })

	total := len(all)
	if offset >= total {
		return []chat.Message{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
