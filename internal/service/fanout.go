package service

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/metrics"
)

// Event is the envelope pushed to every room a message targets.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const EventNewMessage = "new_message"

// Dispatcher computes the room set for a message and pushes it through the
// injected broadcaster. Room ids are plain entity-id strings; this naming is
// the wire contract clients join against.
type Dispatcher struct {
	profiles ProfileStore
	hub      Broadcaster
	log      *zap.SugaredLogger
}

func NewDispatcher(profiles ProfileStore, hub Broadcaster, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{profiles: profiles, hub: hub, log: log}
}

// Rooms resolves the target room set for a message in the given conversation.
func (d *Dispatcher) Rooms(ctx context.Context, ct domain.ConversationType, convID, senderUserID string) ([]string, error) {
	switch ct {
	case domain.ConversationGroup:
		g, err := d.profiles.GroupByID(ctx, convID)
		if err != nil {
			return nil, err
		}
		rooms := append([]string{g.ID}, g.MenteeIDs...)
		rooms = append(rooms, g.MentorID)
		return lo.Uniq(rooms), nil

	case domain.ConversationGuardian:
		g, err := d.profiles.GuardianByID(ctx, convID)
		if err != nil {
			return nil, err
		}
		mentees, err := d.profiles.MenteesByIDs(ctx, g.MenteeIDs)
		if err != nil {
			return nil, err
		}
		rooms := []string{g.UserID}
		for _, m := range mentees {
			if m.MentorID != "" {
				rooms = append(rooms, m.MentorID)
			}
		}
		rooms = append(rooms, g.ID)
		return lo.Uniq(rooms), nil

	case domain.ConversationIndividual:
		// The sender's own user room is included so a guardian posting into
		// the mentee's conversation still sees its own echo.
		return lo.Uniq([]string{convID, senderUserID}), nil
	}
	return nil, nil
}

// Broadcast fans a decorated message out to its rooms. Best-effort: rooms with
// no live subscriber simply drop the event.
func (d *Dispatcher) Broadcast(rooms []string, m *domain.Message) {
	ev := Event{Type: EventNewMessage, Data: m}
	for _, room := range rooms {
		d.hub.Broadcast(room, ev)
		metrics.RoomsBroadcast.Inc()
	}
	d.log.Debugw("message broadcast", "message_id", m.ID, "rooms", len(rooms))
}
