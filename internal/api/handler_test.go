package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/auth"
	"github.com/khushalb002/MMSpace-sub000/internal/cache"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/service"
	"github.com/khushalb002/MMSpace-sub000/internal/ws"
)

// stubProfiles serves the same fixture the service tests use: mentor-1 owns
// group-1 with mentee-a and mentee-b; guardian-1 is linked to both mentees.
type stubProfiles struct{}

func (stubProfiles) GroupByID(_ context.Context, id string) (*domain.Group, error) {
	if id != "group-1" {
		return nil, apperr.NotFound("group")
	}
	return &domain.Group{ID: "group-1", MentorID: "mentor-1", MenteeIDs: []string{"mentee-a", "mentee-b"}}, nil
}

func (stubProfiles) MenteeByID(_ context.Context, id string) (*domain.Mentee, error) {
	switch id {
	case "mentee-a":
		return &domain.Mentee{ID: "mentee-a", UserID: "u-a", MentorID: "mentor-1"}, nil
	case "mentee-b":
		return &domain.Mentee{ID: "mentee-b", UserID: "u-b", MentorID: "mentor-2"}, nil
	}
	return nil, apperr.NotFound("mentee")
}

func (stubProfiles) GuardianByID(_ context.Context, id string) (*domain.Guardian, error) {
	if id != "guardian-1" {
		return nil, apperr.NotFound("guardian")
	}
	return &domain.Guardian{ID: "guardian-1", UserID: "u-guardian", MenteeIDs: []string{"mentee-a", "mentee-b"}}, nil
}

func (stubProfiles) MentorByUserID(_ context.Context, userID string) (*domain.Mentor, error) {
	if userID == "u-mentor1" {
		return &domain.Mentor{ID: "mentor-1", UserID: "u-mentor1", Name: "Meera"}, nil
	}
	return nil, apperr.NotFound("mentor profile")
}

func (s stubProfiles) MenteeByUserID(ctx context.Context, userID string) (*domain.Mentee, error) {
	switch userID {
	case "u-a":
		return s.MenteeByID(ctx, "mentee-a")
	case "u-b":
		return s.MenteeByID(ctx, "mentee-b")
	}
	return nil, apperr.NotFound("mentee profile")
}

func (s stubProfiles) GuardianByUserID(ctx context.Context, userID string) (*domain.Guardian, error) {
	if userID == "u-guardian" {
		return s.GuardianByID(ctx, "guardian-1")
	}
	return nil, apperr.NotFound("guardian profile")
}

func (s stubProfiles) MenteesByIDs(ctx context.Context, ids []string) ([]domain.Mentee, error) {
	out := []domain.Mentee{}
	for _, id := range ids {
		if m, err := s.MenteeByID(ctx, id); err == nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (stubProfiles) MentorNamesByUserIDs(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if id == "u-mentor1" {
			out[id] = "Meera"
		}
	}
	return out, nil
}

func (stubProfiles) GuardianNamesByUserIDs(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if id == "u-guardian" {
			out[id] = "Gita"
		}
	}
	return out, nil
}

func (stubProfiles) UserNamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		out[id] = "User " + id
	}
	return out, nil
}

type memStore struct {
	mu   sync.Mutex
	msgs []*domain.Message
}

func (s *memStore) Insert(_ context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.msgs = append(s.msgs, &cp)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperr.NotFound("message")
}

func (s *memStore) ListByConversation(_ context.Context, ct domain.ConversationType, convID string, page, limit int64) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Message{}
	for _, m := range s.msgs {
		if m.ConversationType == ct && m.ConversationID == convID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) MarkRead(_ context.Context, messageID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
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

func (s *memStore) DeleteByConversation(_ context.Context, ct domain.ConversationType, convID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.msgs[:0]
	var n int64
	for _, m := range s.msgs {
		if m.ConversationType == ct && m.ConversationID == convID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	s.msgs = kept
	return n, nil
}

type stubPresence struct{}

func (stubPresence) SetOnline(context.Context, string) error  { return nil }
func (stubPresence) SetOffline(context.Context, string) error { return nil }
func (stubPresence) Get(_ context.Context, _ string) (cache.PresenceInfo, error) {
	return cache.PresenceInfo{Status: "offline"}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *auth.Validator) {
	t.Helper()
	log := zap.NewNop().Sugar()
	profiles := stubProfiles{}
	identity := service.NewIdentityResolver(profiles)
	authz := service.NewAuthorizer(profiles, identity)
	hub := ws.NewHub()
	fanout := service.NewDispatcher(profiles, hub, log)
	svc := service.NewMessageService(&memStore{}, authz, service.NewNormalizer(profiles), fanout, nil, log)
	wsrv := ws.NewServer(identity, authz, stubPresence{}, log, 25*time.Second, 10*time.Second, 65536)
	jv := auth.NewValidator("test-secret")
	return NewServer(svc, wsrv, jv, stubPresence{}, nil, log), jv
}

func bearer(t *testing.T, jv *auth.Validator, userID string, role domain.Role) string {
	t.Helper()
	tok, err := jv.Sign(domain.Principal{UserID: userID, Role: role}, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(t *testing.T, app *fiber.App, method, path, authHeader string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	decoded := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestSendMessage_Created(t *testing.T) {
	app, jv := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/v1/messages", bearer(t, jv, "u-mentor1", domain.RoleMentor), map[string]any{
		"conversation_type": "group",
		"conversation_id":   "group-1",
		"content":           "  hello  ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	require.Equal(t, "hello", data["content"])
	require.Equal(t, "Meera", data["sender_name"])
}

func TestSendMessage_StatusMapping(t *testing.T) {
	app, jv := newTestApp(t)

	cases := []struct {
		name   string
		auth   string
		body   map[string]any
		status int
	}{
		{
			"missing token", "",
			map[string]any{"conversation_type": "group", "conversation_id": "group-1", "content": "x"},
			http.StatusUnauthorized,
		},
		{
			"invalid type", bearer(t, jv, "u-mentor1", domain.RoleMentor),
			map[string]any{"conversation_type": "megaphone", "conversation_id": "group-1", "content": "x"},
			http.StatusBadRequest,
		},
		{
			"empty content", bearer(t, jv, "u-mentor1", domain.RoleMentor),
			map[string]any{"conversation_type": "group", "conversation_id": "group-1", "content": "   "},
			http.StatusBadRequest,
		},
		{
			"guardian into group", bearer(t, jv, "u-guardian", domain.RoleGuardian),
			map[string]any{"conversation_type": "group", "conversation_id": "group-1", "content": "x"},
			http.StatusForbidden,
		},
		{
			"missing anchor", bearer(t, jv, "u-mentor1", domain.RoleMentor),
			map[string]any{"conversation_type": "group", "conversation_id": "group-z", "content": "x"},
			http.StatusNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, "POST", "/v1/messages", tc.auth, tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestListMessages_AscendingAndAuthorized(t *testing.T) {
	app, jv := newTestApp(t)
	mentorAuth := bearer(t, jv, "u-mentor1", domain.RoleMentor)

	for _, text := range []string{"first", "second"} {
		resp, _ := doJSON(t, app, "POST", "/v1/messages", mentorAuth, map[string]any{
			"conversation_type": "group", "conversation_id": "group-1", "content": text,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, "GET", "/v1/groups/group-1/messages", bearer(t, jv, "u-a", domain.RoleMentee), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	require.Equal(t, "first", data[0].(map[string]any)["content"])
	require.Equal(t, "second", data[1].(map[string]any)["content"])

	resp, _ = doJSON(t, app, "GET", "/v1/groups/group-1/messages", bearer(t, jv, "u-guardian", domain.RoleGuardian), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMarkRead_AckAndMissing(t *testing.T) {
	app, jv := newTestApp(t)
	mentorAuth := bearer(t, jv, "u-mentor1", domain.RoleMentor)

	_, body := doJSON(t, app, "POST", "/v1/messages", mentorAuth, map[string]any{
		"conversation_type": "group", "conversation_id": "group-1", "content": "read me",
	})
	id := body["data"].(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, "POST", "/v1/messages/"+id+"/read", bearer(t, jv, "u-a", domain.RoleMentee), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/v1/messages/missing/read", mentorAuth, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteConversation_StatusMapping(t *testing.T) {
	app, jv := newTestApp(t)
	mentorAuth := bearer(t, jv, "u-mentor1", domain.RoleMentor)

	resp, _ := doJSON(t, app, "DELETE", "/v1/conversations/group/group-1", mentorAuth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/v1/conversations/banter/group-1", mentorAuth, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/v1/conversations/group/group-z", mentorAuth, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/v1/conversations/group/group-1", bearer(t, jv, "u-guardian", domain.RoleGuardian), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPresenceEndpoint(t *testing.T) {
	app, jv := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/v1/users/u-a/presence", bearer(t, jv, "u-mentor1", domain.RoleMentor), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "offline", body["data"].(map[string]any)["status"])
}
