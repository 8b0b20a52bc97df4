package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

type Client struct {
	UserID   string
	Role     domain.Role
	SocketID string

	conn *websocket.Conn
	send chan any

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, userID, socketID string) *Client {
	return &Client{
		UserID:   userID,
		SocketID: socketID,
		conn:     conn,
		send:     make(chan any, 256),
	}
}

// Send enqueues a payload, dropping it if the client's buffer is full or the
// connection is already closing.
func (c *Client) Send(payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// clientFrame is what a connected client may send: joining or leaving a
// conversation room it is authorized to read.
type clientFrame struct {
	Action           string `json:"action"`
	ConversationType string `json:"conversation_type,omitempty"`
	Room             string `json:"room,omitempty"`
}

func (c *Client) readPump(s *Server) {
	defer func() {
		s.disconnect(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(s.maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		s.handleFrame(c, frame)
	}
}

func (c *Client) writePump(s *Server) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.writeDeadline))
			b, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.writeDeadline))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
