package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/metrics"
)

// MessageService orchestrates the send/list/read/delete operations across the
// authorizer, the store, the normalizer and the fan-out dispatcher.
type MessageService struct {
	store  MessageStore
	authz  *Authorizer
	norm   *Normalizer
	fanout *Dispatcher
	pub    Publisher
	log    *zap.SugaredLogger
}

func NewMessageService(store MessageStore, authz *Authorizer, norm *Normalizer, fanout *Dispatcher, pub Publisher, log *zap.SugaredLogger) *MessageService {
	return &MessageService{store: store, authz: authz, norm: norm, fanout: fanout, pub: pub, log: log}
}

// Send validates, authorizes, persists, decorates and finally broadcasts a
// message. Once the message is stored it is durable: a failing broadcast or
// bus publish never rolls it back.
func (s *MessageService) Send(ctx context.Context, p domain.Principal, ctRaw, convID, content string) (*domain.Message, error) {
	ct, err := domain.ParseConversationType(ctRaw)
	if err != nil {
		return nil, apperr.Validation("invalid conversation type %q", ctRaw)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content is empty")
	}
	if err := s.authz.CanAccess(ctx, p, ct, convID, ModeWrite); err != nil {
		return nil, err
	}

	m := &domain.Message{
		ID:               uuid.NewString(),
		ConversationType: ct,
		ConversationID:   convID,
		SenderID:         p.UserID,
		SenderRole:       p.Role,
		Content:          content,
		CreatedAt:        time.Now().UTC(),
		ReadBy:           []domain.ReadReceipt{},
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}
	metrics.MessagesSent.WithLabelValues(string(ct)).Inc()

	if err := s.norm.Decorate(ctx, []*domain.Message{m}); err != nil {
		// The message is stored; report the failure instead of shipping a
		// half-decorated broadcast.
		return nil, err
	}

	rooms, err := s.fanout.Rooms(ctx, ct, convID, p.UserID)
	if err != nil {
		s.log.Warnw("room resolution failed, skipping broadcast", "message_id", m.ID, "error", err)
		return m, nil
	}
	s.fanout.Broadcast(rooms, m)

	if s.pub != nil {
		if err := s.pub.PublishMessageCreated(ctx, rooms, m); err != nil {
			s.log.Warnw("event publish failed", "message_id", m.ID, "error", err)
		}
	}
	return m, nil
}

// List returns one page of a conversation's history in chronological order,
// decorated with sender names.
func (s *MessageService) List(ctx context.Context, p domain.Principal, ct domain.ConversationType, convID string, page, limit int64) ([]*domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if page < 0 {
		page = 0
	}
	if err := s.authz.CanAccess(ctx, p, ct, convID, ModeRead); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListByConversation(ctx, ct, convID, page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.norm.Decorate(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead records an idempotent read receipt for the principal. Conversation
// membership is not re-checked here; any authenticated principal who could
// fetch the message id may acknowledge it.
func (s *MessageService) MarkRead(ctx context.Context, p domain.Principal, messageID string) error {
	return s.store.MarkRead(ctx, messageID, p.UserID, time.Now().UTC())
}

// DeleteConversation removes every message sharing the (type, id) pair.
func (s *MessageService) DeleteConversation(ctx context.Context, p domain.Principal, ctRaw, convID string) (int64, error) {
	ct, err := domain.ParseConversationType(ctRaw)
	if err != nil {
		return 0, apperr.Validation("invalid conversation type %q", ctRaw)
	}
	if err := s.authz.CanDelete(ctx, p, ct, convID); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteByConversation(ctx, ct, convID)
	if err != nil {
		return 0, err
	}
	s.log.Infow("conversation deleted", "type", ct, "conversation_id", convID, "messages", n, "by", p.UserID)
	return n, nil
}
