package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/cache"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
	"github.com/khushalb002/MMSpace-sub000/internal/service"
)

// Presence is the subset of the presence store the API reads.
type Presence interface {
	Get(ctx context.Context, userID string) (cache.PresenceInfo, error)
}

type Handlers struct {
	svc      *service.MessageService
	presence Presence
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewHandlers(svc *service.MessageService, presence Presence, log *zap.SugaredLogger) *Handlers {
	return &Handlers{svc: svc, presence: presence, validate: validator.New(), log: log}
}

func principalFrom(c *fiber.Ctx) domain.Principal {
	userID, _ := c.Locals("user_id").(string)
	roleStr, _ := c.Locals("role").(string)
	return domain.Principal{UserID: userID, Role: domain.Role(roleStr)}
}

// respondError maps the error taxonomy to a status code. Forbidden and
// not-found stay distinguishable in the log even where clients see similar
// generic bodies.
func (h *Handlers) respondError(c *fiber.Ctx, err error) error {
	status := apperr.StatusCode(err)
	if status >= 500 {
		h.log.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	h.log.Debugw("request rejected", "path", c.Path(), "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type sendMessageRequest struct {
	ConversationType string `json:"conversation_type" validate:"required"`
	ConversationID   string `json:"conversation_id" validate:"required"`
	Content          string `json:"content" validate:"required"`
}

func (h *Handlers) sendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	msg, err := h.svc.Send(c.Context(), principalFrom(c), req.ConversationType, req.ConversationID, req.Content)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "ok", "data": msg})
}

func (h *Handlers) listMessages(ct domain.ConversationType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		convID := c.Params("id")
		page := int64(c.QueryInt("page", 0))
		limit := int64(c.QueryInt("limit", 50))
		msgs, err := h.svc.List(c.Context(), principalFrom(c), ct, convID, page, limit)
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok", "data": msgs})
	}
}

func (h *Handlers) markRead(c *fiber.Ctx) error {
	if err := h.svc.MarkRead(c.Context(), principalFrom(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handlers) deleteConversation(c *fiber.Ctx) error {
	n, err := h.svc.DeleteConversation(c.Context(), principalFrom(c), c.Params("type"), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "deleted": n})
}

func (h *Handlers) userPresence(c *fiber.Ctx) error {
	info, err := h.presence.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.respondError(c, apperr.Dependency("presence lookup", err))
	}
	return c.JSON(fiber.Map{"status": "ok", "data": info})
}
