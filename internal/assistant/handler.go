package assistant

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brennuck/sprout/internal/ledger"
)

type Handler struct {
	Bridge *Bridge
}

func NewHandler(bridge *Bridge) *Handler {
	return &Handler{Bridge: bridge}
}

type chatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body chatRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(body.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	reply, err := h.Bridge.Handle(ledger.UserContext(c), actor, body.Message, body.History)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "assistant unavailable")
	}
	return c.JSON(reply)
}
