package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// fakeProfileStore serves the identity graphs from maps and counts batch
// lookups so tests can assert the normalizer batches per role.
type fakeProfileStore struct {
	groups    map[string]*domain.Group
	mentees   map[string]*domain.Mentee
	guardians map[string]*domain.Guardian
	mentors   map[string]*domain.Mentor
	users     map[string]*domain.User

	mu         sync.Mutex
	batchCalls map[string]int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		groups:     map[string]*domain.Group{},
		mentees:    map[string]*domain.Mentee{},
		guardians:  map[string]*domain.Guardian{},
		mentors:    map[string]*domain.Mentor{},
		users:      map[string]*domain.User{},
		batchCalls: map[string]int{},
	}
}

func (f *fakeProfileStore) countBatch(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls[name]++
}

func (f *fakeProfileStore) GroupByID(_ context.Context, id string) (*domain.Group, error) {
	if g, ok := f.groups[id]; ok {
		return g, nil
	}
	return nil, apperr.NotFound("group")
}

func (f *fakeProfileStore) MenteeByID(_ context.Context, id string) (*domain.Mentee, error) {
	if m, ok := f.mentees[id]; ok {
		return m, nil
	}
	return nil, apperr.NotFound("mentee")
}

func (f *fakeProfileStore) GuardianByID(_ context.Context, id string) (*domain.Guardian, error) {
	if g, ok := f.guardians[id]; ok {
		return g, nil
	}
	return nil, apperr.NotFound("guardian")
}

func (f *fakeProfileStore) MentorByUserID(_ context.Context, userID string) (*domain.Mentor, error) {
	for _, m := range f.mentors {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, apperr.NotFound("mentor profile")
}

func (f *fakeProfileStore) MenteeByUserID(_ context.Context, userID string) (*domain.Mentee, error) {
	for _, m := range f.mentees {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, apperr.NotFound("mentee profile")
}

func (f *fakeProfileStore) GuardianByUserID(_ context.Context, userID string) (*domain.Guardian, error) {
	for _, g := range f.guardians {
		if g.UserID == userID {
			return g, nil
		}
	}
	return nil, apperr.NotFound("guardian profile")
}

func (f *fakeProfileStore) MenteesByIDs(_ context.Context, ids []string) ([]domain.Mentee, error) {
	out := []domain.Mentee{}
	for _, id := range ids {
		if m, ok := f.mentees[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) MentorNamesByUserIDs(_ context.Context, userIDs []string) (map[string]string, error) {
	f.countBatch("mentor")
	out := map[string]string{}
	for _, m := range f.mentors {
		for _, id := range userIDs {
			if m.UserID == id {
				out[id] = m.Name
			}
		}
	}
	return out, nil
}

func (f *fakeProfileStore) GuardianNamesByUserIDs(_ context.Context, userIDs []string) (map[string]string, error) {
	f.countBatch("guardian")
	out := map[string]string{}
	for _, g := range f.guardians {
		for _, id := range userIDs {
			if g.UserID == id {
				out[id] = g.Name
			}
		}
	}
	return out, nil
}

func (f *fakeProfileStore) UserNamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	f.countBatch("user")
	out := map[string]string{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Name
		}
	}
	return out, nil
}

// fakeMessageStore is an in-memory MessageStore with the same idempotent
// read-receipt behavior as the Mongo repository.
type fakeMessageStore struct {
	mu   sync.Mutex
	msgs []*domain.Message
}

func newFakeMessageStore() *fakeMessageStore { return &fakeMessageStore{} }

func (f *fakeMessageStore) Insert(_ context.Context, m *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.msgs = append(f.msgs, &cp)
	return nil
}

func (f *fakeMessageStore) GetByID(_ context.Context, id string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("message")
}

func (f *fakeMessageStore) ListByConversation(_ context.Context, ct domain.ConversationType, convID string, page, limit int64) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []*domain.Message{}
	for _, m := range f.msgs {
		if m.ConversationType == ct && m.ConversationID == convID {
			cp := *m
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	start := int64(len(matched)) - (page+1)*limit
	end := int64(len(matched)) - page*limit
	if end < 0 {
		end = 0
	}
	if start < 0 {
		start = 0
	}
	return matched[start:end], nil
}

func (f *fakeMessageStore) MarkRead(_ context.Context, messageID, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.ID != messageID {
			continue
		}
		for _, r := range m.ReadBy {
			if r.UserID == userID {
				return nil
			}
		}
		m.ReadBy = append(m.ReadBy, domain.ReadReceipt{UserID: userID, ReadAt: at})
		return nil
	}
	return apperr.NotFound("message")
}

func (f *fakeMessageStore) DeleteByConversation(_ context.Context, ct domain.ConversationType, convID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.msgs[:0]
	var deleted int64
	for _, m := range f.msgs {
		if m.ConversationType == ct && m.ConversationID == convID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.msgs = kept
	return deleted, nil
}

// fakeBroadcaster records what was pushed to which room.
type fakeBroadcaster struct {
	mu    sync.Mutex
	rooms map[string][]any
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{rooms: map[string][]any{}}
}

func (f *fakeBroadcaster) Broadcast(room string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room] = append(f.rooms[room], payload)
}

func (f *fakeBroadcaster) roomSet() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.rooms))
	for r := range f.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
