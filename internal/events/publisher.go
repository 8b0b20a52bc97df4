package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// MessageCreated is the envelope published after a successful send. Rooms are
// precomputed by the sending instance so consumers deliver without re-reading
// the membership graph. Origin lets instances skip their own envelopes.
type MessageCreated struct {
	Origin  string          `json:"origin"`
	Rooms   []string        `json:"rooms"`
	Message *domain.Message `json:"message"`
}

type Producer struct {
	writer *kafka.Writer
	origin string
}

func NewProducer(brokers []string, topic, origin string) *Producer {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Producer{writer: w, origin: origin}
}

func (p *Producer) PublishMessageCreated(ctx context.Context, rooms []string, m *domain.Message) error {
	env := MessageCreated{Origin: p.origin, Rooms: rooms, Message: m}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.ConversationID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
