package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/auth"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/middleware"
	"github.com/khushalb002/MMSpace-sub000/internal/service"
	"github.com/khushalb002/MMSpace-sub000/internal/ws"
)

// NewServer assembles the fiber app: REST surface under /v1, websocket
// upgrade at /ws, health at /healthz.
func NewServer(svc *service.MessageService, wsrv *ws.Server, jv *auth.Validator, presence Presence, limiter *middleware.RateLimiter, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberlogger.New())
	h := NewHandlers(svc, presence, log)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	v1.Use(bearerAuth(jv))

	sendHandlers := []fiber.Handler{h.sendMessage}
	if limiter != nil {
		sendHandlers = []fiber.Handler{
			limiter.MiddlewareByKey(func(c *fiber.Ctx) string {
				uid, _ := c.Locals("user_id").(string)
				return uid
			}),
			h.sendMessage,
		}
	}
	v1.Post("/messages", sendHandlers...)
	v1.Get("/groups/:id/messages", h.listMessages(domain.ConversationGroup))
	v1.Get("/mentees/:id/messages", h.listMessages(domain.ConversationIndividual))
	v1.Get("/guardians/:id/messages", h.listMessages(domain.ConversationGuardian))
	v1.Post("/messages/:id/read", h.markRead)
	v1.Delete("/conversations/:type/:id", h.deleteConversation)
	v1.Get("/users/:id/presence", h.userPresence)

	// Websocket clients authenticate with ?token= since browsers cannot set
	// headers on the upgrade request.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		p, err := jv.Validate(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("user_id", p.UserID)
		c.Locals("role", string(p.Role))
		return c.Next()
	})
	app.Get("/ws", websocket.New(wsrv.HandleWS))

	return app
}

func bearerAuth(jv *auth.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get("Authorization")
		if hdr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(hdr, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		p, err := jv.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("user_id", p.UserID)
		c.Locals("role", string(p.Role))
		return c.Next()
	}
}
