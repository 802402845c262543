package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eduspace/backend/core/course"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	mu       sync.Mutex
	seq      int
	rooms    map[string]*Room
	messages map[string]*Message
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rooms: make(map[string]*Room), messages: make(map[string]*Message)}
}

func (r *fakeRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("id-%d", r.seq)
}

func (r *fakeRepo) GetRoomByCourse(ctx context.Context, courseID string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.CourseID == courseID {
			return *room, nil
		}
	}
	return Room{}, ErrRoomNotFound
}

func (r *fakeRepo) CreateRoom(ctx context.Context, room Room) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.ID = r.nextID()
	r.rooms[room.ID] = &room
	return room, nil
}

func (r *fakeRepo) CreateMessage(ctx context.Context, msg Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = r.nextID()
	r.messages[msg.ID] = &msg
	return msg, nil
}

func (r *fakeRepo) QueryMessages(ctx context.Context, courseID string, offset, limit int) ([]Message, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := []Message{}
	for _, msg := range r.messages {
		if msg.CourseID == courseID {
			msgs = append(msgs, *msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SentAt.Before(msgs[j].SentAt) })
	total := len(msgs)
	if offset >= total {
		return []Message{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return msgs[offset:end], total, nil
}

// fakeCourses serves a single course: faculty f1, one enrolled student s1.
type fakeCourses struct{}

var _ CourseDirectory = (*fakeCourses)(nil)

func (fakeCourses) Get(ctx context.Context, courseID string) (course.Course, error) {
	if courseID != "c1" {
		return course.Course{}, course.ErrNotFound
	}
	return course.Course{ID: "c1", FacultyID: "f1", StudentIDs: []string{"s1"}}, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, fakeCourses{}), repo
}

func TestGetOrCreateRoom(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.GetOrCreateRoom(ctx, "f1", "c1")
	if err != nil {
		t.Fatalf("GetOrCreateRoom() error = %v", err)
	}
	if view.Room.ID == "" {
		t.Error("GetOrCreateRoom() did not assign a room id")
	}
	assert.Equal(t, []string{"f1", "s1"}, view.Participants)

	// a second lookup reuses the same room
	again, err := svc.GetOrCreateRoom(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("GetOrCreateRoom() error = %v", err)
	}
	assert.Equal(t, view.Room.ID, again.Room.ID)

	if _, err := svc.GetOrCreateRoom(ctx, "stranger", "c1"); err != ErrNotParticipant {
		t.Errorf("GetOrCreateRoom() stranger error = %v, want %v", err, ErrNotParticipant)
	}
	if _, err := svc.GetOrCreateRoom(ctx, "f1", "nope"); err != course.ErrNotFound {
		t.Errorf("GetOrCreateRoom() unknown course error = %v, want %v", err, course.ErrNotFound)
	}
}

func TestPostAndPagination(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := Message{CourseID: "c1", SenderID: "s1", Body: fmt.Sprintf("msg-%d", i), SentAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := repo.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage() error = %v", err)
		}
	}

	page, err := svc.Messages(ctx, "s1", "c1", 1, 2)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	if assert.Len(t, page.Messages, 2) {
		assert.Equal(t, "msg-0", page.Messages[0].Body)
		assert.Equal(t, "msg-1", page.Messages[1].Body)
	}

	page, err = svc.Messages(ctx, "s1", "c1", 3, 2)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if assert.Len(t, page.Messages, 1) {
		assert.Equal(t, "msg-4", page.Messages[0].Body)
	}

	// out-of-range pages come back empty, not as an error
	page, err = svc.Messages(ctx, "s1", "c1", 9, 2)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	assert.Empty(t, page.Messages)
	assert.Equal(t, 9, page.CurrentPage)

	// zero values fall back to page 1 and the default page size
	page, err = svc.Messages(ctx, "f1", "c1", 0, 0)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Messages, 5)
	assert.Equal(t, 1, page.TotalPages)

	if _, err := svc.Messages(ctx, "stranger", "c1", 1, 2); err != ErrNotParticipant {
		t.Errorf("Messages() stranger error = %v, want %v", err, ErrNotParticipant)
	}
}

func TestPost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	sent, err := svc.Post(ctx, "f1", "c1", NewMessage{Body: "hello class"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	assert.NotEmpty(t, sent.ID)
	assert.Equal(t, "f1", sent.SenderID)
	assert.False(t, sent.SentAt.IsZero())

	page, _ := svc.Messages(ctx, "s1", "c1", 1, 10)
	if assert.Len(t, page.Messages, 1) {
		assert.Equal(t, "hello class", page.Messages[0].Body)
	}

	if _, err := svc.Post(ctx, "stranger", "c1", NewMessage{Body: "hi"}); err != ErrNotParticipant {
		t.Errorf("Post() stranger error = %v, want %v", err, ErrNotParticipant)
	}
}
