package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(coll *mongo.Collection) *MessageRepository {
	ix := mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversation_type", Value: 1},
			{Key: "conversation_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("conversation_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &MessageRepository{coll: coll}
}

func (r *MessageRepository) Insert(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if m.ReadBy == nil {
		m.ReadBy = []domain.ReadReceipt{}
	}
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return apperr.Dependency("insert message", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("message")
		}
		return nil, apperr.Dependency("get message", err)
	}
	if m.ReadBy == nil {
		m.ReadBy = []domain.ReadReceipt{}
	}
	return &m, nil
}

// ListByConversation returns one page of a conversation's log in chronological
// order. The query runs newest-first so page 0 is the most recent page, then
// the slice is reversed before returning.
func (r *MessageRepository) ListByConversation(ctx context.Context, ct domain.ConversationType, convID string, page, limit int64) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"conversation_type": ct, "conversation_id": convID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Dependency("list messages", err)
	}
	defer cur.Close(ctx)

	out := []*domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, apperr.Dependency("decode message", err)
		}
		if m.ReadBy == nil {
			m.ReadBy = []domain.ReadReceipt{}
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Dependency("list messages", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkRead records a read receipt for userID. The filter excludes documents
// that already carry a receipt from this user, so concurrent calls converge to
// a single entry without an application-level check-then-write.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": messageID, "read_by.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"read_by": domain.ReadReceipt{UserID: userID, ReadAt: at}}},
	)
	if err != nil {
		return apperr.Dependency("mark read", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	// Either already read or the message is gone; only the latter is an error.
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": messageID})
	if err != nil {
		return apperr.Dependency("mark read", err)
	}
	if n == 0 {
		return apperr.NotFound("message")
	}
	return nil
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, ct domain.ConversationType, convID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"conversation_type": ct, "conversation_id": convID})
	if err != nil {
		return 0, apperr.Dependency("delete conversation", err)
	}
	return res.DeletedCount, nil
}
