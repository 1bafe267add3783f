package backup

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brennuck/sprout/internal/ledger"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) Download(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	data, err := h.Service.ExportData(ledger.UserContext(c), actor)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to export data")
	}

	c.Set("Content-Disposition", `attachment; filename="sprout-export.json"`)
	return c.JSON(data)
}

func (h *Handler) Upload(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body Import
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid data format")
	}

	if err := h.Service.ImportData(ledger.UserContext(c), actor, body); err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
