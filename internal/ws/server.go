package ws

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/metrics"
	"github.com/khushalb002/MMSpace-sub000/internal/service"
)

// PresenceStore mirrors the redis presence operations the server needs.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

type Server struct {
	Hub *Hub

	identity *service.IdentityResolver
	authz    *service.Authorizer
	presence PresenceStore
	log      *zap.SugaredLogger

	pingInterval  time.Duration
	writeDeadline time.Duration
	maxMsgSize    int64
}

func NewServer(identity *service.IdentityResolver, authz *service.Authorizer, presence PresenceStore, log *zap.SugaredLogger, pingInterval, writeDeadline time.Duration, maxMsgSize int64) *Server {
	return &Server{
		Hub:           NewHub(),
		identity:      identity,
		authz:         authz,
		presence:      presence,
		log:           log,
		pingInterval:  pingInterval,
		writeDeadline: writeDeadline,
		maxMsgSize:    maxMsgSize,
	}
}

// HandleWS runs for each upgraded connection. The auth middleware stored the
// principal in Locals before the upgrade. On connect the client joins its own
// user-id room and, when its role profile resolves, the profile-id room;
// conversation rooms are joined by frames, gated by the read authorization.
func (s *Server) HandleWS(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	roleStr, _ := conn.Locals("role").(string)
	role, err := domain.ParseRole(roleStr)
	if userID == "" || err != nil {
		_ = conn.Close()
		return
	}

	c := NewClient(conn, userID, uuid.NewString())
	c.Role = role
	s.Hub.AddClient(c)
	s.Hub.JoinRoom(userID, userID)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if prof, err := s.identity.ResolveProfile(ctx, userID, role); err == nil {
		s.Hub.JoinRoom(prof.ID, userID)
	}
	if err := s.presence.SetOnline(ctx, userID); err != nil {
		s.log.Warnw("presence set online failed", "user", userID, "error", err)
	}
	cancel()

	metrics.WSConnections.Inc()
	s.log.Infow("ws connected", "user", userID, "socket", c.SocketID)

	go c.writePump(s)
	c.readPump(s)
}

func (s *Server) handleFrame(c *Client, frame clientFrame) {
	switch frame.Action {
	case "join":
		ct, err := domain.ParseConversationType(frame.ConversationType)
		if err != nil || frame.Room == "" {
			return
		}
		p := domain.Principal{UserID: c.UserID, Role: c.Role}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.authz.CanAccess(ctx, p, ct, frame.Room, service.ModeRead); err != nil {
			c.Send(service.Event{Type: "error", Data: "room join denied"})
			return
		}
		s.Hub.JoinRoom(frame.Room, c.UserID)
	case "leave":
		if frame.Room != "" {
			s.Hub.LeaveRoom(frame.Room, c.UserID)
		}
	}
}

func (s *Server) disconnect(c *Client) {
	last := s.Hub.RemoveClient(c)
	c.Close()
	metrics.WSConnections.Dec()
	if last {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.presence.SetOffline(ctx, c.UserID); err != nil {
			s.log.Warnw("presence set offline failed", "user", c.UserID, "error", err)
		}
	}
	s.log.Infow("ws disconnected", "user", c.UserID, "socket", c.SocketID)
}
