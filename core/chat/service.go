package chat

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/eduspace/backend/core/course"
)

var (
	// errors
	ErrRoomNotFound   = errors.New("chat room not found")
	ErrNotParticipant = errors.New("access denied: not a participant of this chat room")
)

const defaultPageSize = 50

type (
	Repository interface {
		GetRoomByCourse(ctx context.Context, courseID string) (Room, error)
		CreateRoom(ctx context.Context, room Room) (Room, error)
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryMessages returns one page of messages sorted oldest first,
		// along with the total message count for the course.
		QueryMessages(ctx context.Context, courseID string, offset, limit int) ([]Message, int, error)
	}

	// CourseDirectory resolves courses for authorization; satisfied by
	// *course.Service.
	CourseDirectory interface {
		Get(ctx context.Context, courseID string) (course.Course, error)
	}

	Service struct {
		repo    Repository
		courses CourseDirectory
	}
)

func NewService(repo Repository, courses CourseDirectory) *Service {
	return &Service{repo: repo, courses: courses}
}

// authorize returns the course iff the user is its faculty or an enrolled
// student at call time.
func (svc *Service) authorize(ctx context.Context, userID, courseID string) (course.Course, error) {
	crs, err := svc.courses.Get(ctx, courseID)
	if err != nil {
		return course.Course{}, err
	}
	if !crs.IsMember(userID) {
		return course.Course{}, ErrNotParticipant
	}
	return crs, nil
}

// IsAuthorized reports whether the user may access the course's chat room.
func (svc *Service) IsAuthorized(ctx context.Context, userID, courseID string) bool {
	_, err := svc.authorize(ctx, userID, courseID)
	return err == nil
}

// GetOrCreateRoom lazily creates the course's chat room. Participants are
// recomputed from the course on every lookup so enrollment changes are always
// reflected.
func (svc *Service) GetOrCreateRoom(ctx context.Context, userID, courseID string) (RoomView, error) {
	crs, err := svc.authorize(ctx, userID, courseID)
	if err != nil {
		return RoomView{}, err
	}

	room, err := svc.repo.GetRoomByCourse(ctx, courseID)
	if err != nil {
		if err != ErrRoomNotFound {
			return RoomView{}, err
		}
		room, err = svc.repo.CreateRoom(ctx, Room{CourseID: courseID, CreatedAt: time.Now().UTC()})
		if err != nil {
			return RoomView{}, pkgerrors.Wrap(err, "creating chat room")
		}
	}

	participants := make([]string, 0, len(crs.StudentIDs)+1)
	participants = append(participants, crs.FacultyID)
	participants = append(participants, crs.StudentIDs...)
	return RoomView{Room: room, Participants: participants}, nil
}

// Messages returns one page of the course's chat history.
func (svc *Service) Messages(ctx context.Context, userID, courseID string, page, limit int) (MessagePage, error) {
	if _, err := svc.authorize(ctx, userID, courseID); err != nil {
		return MessagePage{}, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	msgs, total, err := svc.repo.QueryMessages(ctx, courseID, (page-1)*limit, limit)
	if err != nil {
		return MessagePage{}, err
	}
	if msgs == nil {
		msgs = []Message{}
	}

	totalPages := (total + limit - 1) / limit
	return MessagePage{Messages: msgs, TotalPages: totalPages, CurrentPage: page}, nil
}

// Post appends a message to the course's chat history.
func (svc *Service) Post(ctx context.Context, userID, courseID string, nm NewMessage) (Message, error) {
	if _, err := svc.authorize(ctx, userID, courseID); err != nil {
		return Message{}, err
	}

	return svc.repo.CreateMessage(ctx, Message{
		CourseID: courseID,
		SenderID: userID,
		Body:     nm.Body,
		SentAt:   time.Now().UTC(),
	})
}
