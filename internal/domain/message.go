package domain

import (
	"fmt"
	"time"
)

// ConversationType selects which entity anchors a conversation and which
// authorization rules apply to it.
type ConversationType string

const (
	ConversationGroup      ConversationType = "group"
	ConversationIndividual ConversationType = "individual"
	ConversationGuardian   ConversationType = "guardian"
)

func ParseConversationType(s string) (ConversationType, error) {
	switch ConversationType(s) {
	case ConversationGroup, ConversationIndividual, ConversationGuardian:
		return ConversationType(s), nil
	}
	return "", fmt.Errorf("unknown conversation type %q", s)
}

type Role string

const (
	RoleMentor   Role = "mentor"
	RoleMentee   Role = "mentee"
	RoleGuardian Role = "guardian"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMentor, RoleMentee, RoleGuardian, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Principal is the authenticated (user, role) pair attempting an operation.
type Principal struct {
	UserID string
	Role   Role
}

type ReadReceipt struct {
	UserID string    `bson:"user_id" json:"user_id"`
	ReadAt time.Time `bson:"read_at" json:"read_at"`
}

// Message is an entry in a conversation's append-only log. SenderID and
// SenderRole are snapshotted at send time and never re-derived. SenderName is
// a per-request decoration and is not persisted.
type Message struct {
	ID               string           `bson:"_id" json:"id"`
	ConversationType ConversationType `bson:"conversation_type" json:"conversation_type"`
	ConversationID   string           `bson:"conversation_id" json:"conversation_id"`
	SenderID         string           `bson:"sender_id" json:"sender_id"`
	SenderRole       Role             `bson:"sender_role" json:"sender_role"`
	SenderName       string           `bson:"-" json:"sender_name,omitempty"`
	Content          string           `bson:"content" json:"content"`
	CreatedAt        time.Time        `bson:"created_at" json:"created_at"`
	ReadBy           []ReadReceipt    `bson:"read_by" json:"read_by"`
}
