package chat

import (
	"time"

	"github.com/eduspace/backend/core"
)

type (
	// Room pins a chat room's identity to its course; participants are always
	// derived live from the course membership, never stored.
	Room struct {
		ID        string    `json:"id" bson:"_id,omitempty"`
		CourseID  string    `json:"course_id" bson:"course_id"`
		CreatedAt time.Time `json:"created_at" bson:"created_at"` // UTC
	}

	Message struct {
		ID       string    `json:"id" bson:"_id,omitempty"`
		CourseID string    `json:"course_id" bson:"course_id"`
		SenderID string    `json:"sender_id" bson:"sender_id"`
		Body     string    `json:"body" bson:"body"`
		SentAt   time.Time `json:"sent_at" bson:"sent_at"` // UTC
	}

	// RoomView is a Room with its current participants.
	RoomView struct {
		Room         Room     `json:"room"`
		Participants []string `json:"participants"` // user IDs: faculty + enrolled students
	}

	// MessagePage is one page of a course's chat history, oldest first.
	MessagePage struct {
		Messages    []Message `json:"messages"`
		TotalPages  int       `json:"totalPages"`
		CurrentPage int       `json:"currentPage"`
	}
)

type NewMessage struct {
	Body string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Body = core.CleanString(nm.Body)
	return core.Validate.Struct(nm)
}
