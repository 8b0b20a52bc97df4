package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Broadcaster is the local delivery surface the consumer feeds.
type Broadcaster interface {
	Broadcast(room string, payload any)
}

// Consumer reads message-created envelopes published by other instances and
// replays them into the local hub, so every connected socket sees a message
// no matter which instance persisted it.
type Consumer struct {
	reader *kafka.Reader
	origin string
	hub    Broadcaster
	log    *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID, origin string, hub Broadcaster, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, origin: origin, hub: hub, log: log}
}

func (c *Consumer) Start(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warnw("kafka read error", "error", err)
			time.Sleep(time.Second)
			continue
		}
		c.handle(m.Value)
	}
}

func (c *Consumer) handle(value []byte) {
	var env MessageCreated
	if err := json.Unmarshal(value, &env); err != nil {
		c.log.Warnw("invalid message.created envelope", "error", err)
		return
	}
	if env.Origin == c.origin || env.Message == nil {
		return
	}
	payload := struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: "new_message", Data: env.Message}
	for _, room := range env.Rooms {
		c.hub.Broadcast(room, payload)
	}
}

func (c *Consumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
