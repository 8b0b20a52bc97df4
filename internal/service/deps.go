package service

import (
	"context"
	"time"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// MessageStore is the persistence surface the messaging core needs. The Mongo
// repository implements it; tests use an in-memory fake.
type MessageStore interface {
	Insert(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListByConversation(ctx context.Context, ct domain.ConversationType, convID string, page, limit int64) ([]*domain.Message, error)
	MarkRead(ctx context.Context, messageID, userID string, at time.Time) error
	DeleteByConversation(ctx context.Context, ct domain.ConversationType, convID string) (int64, error)
}

// ProfileStore reads the academic-domain entities that anchor conversations.
type ProfileStore interface {
	GroupByID(ctx context.Context, id string) (*domain.Group, error)
	MenteeByID(ctx context.Context, id string) (*domain.Mentee, error)
	GuardianByID(ctx context.Context, id string) (*domain.Guardian, error)
	MentorByUserID(ctx context.Context, userID string) (*domain.Mentor, error)
	MenteeByUserID(ctx context.Context, userID string) (*domain.Mentee, error)
	GuardianByUserID(ctx context.Context, userID string) (*domain.Guardian, error)
	MenteesByIDs(ctx context.Context, ids []string) ([]domain.Mentee, error)
	MentorNamesByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error)
	GuardianNamesByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error)
	UserNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// Broadcaster delivers a payload to every live subscriber of a room.
// Delivery is best-effort; rooms with no subscriber drop the event.
type Broadcaster interface {
	Broadcast(room string, payload any)
}

// Publisher pushes message-created envelopes onto the event bus so other
// instances can deliver to their local sockets.
type Publisher interface {
	PublishMessageCreated(ctx context.Context, rooms []string, m *domain.Message) error
}
