package sharing

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/ledger"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) GetOverview(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ov, err := h.Service.GetOverview(ledger.UserContext(c), actor)
	if err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(ov)
}

type sendInvitationRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

func (h *Handler) SendInvitation(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body sendInvitationRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	permission := strings.ToUpper(strings.TrimSpace(body.Permission))
	if permission == "" {
		permission = string(domain.PermissionView)
	}

	inv, err := h.Service.SendInvitation(ledger.UserContext(c), actor, body.Email, domain.SharePermission(permission))
	if err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(inv)
}

func (h *Handler) AcceptInvitation(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.AcceptInvitation(ledger.UserContext(c), actor, c.Params("id")); err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) DeclineInvitation(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.DeclineInvitation(ledger.UserContext(c), actor, c.Params("id")); err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) CancelInvitation(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.CancelInvitation(ledger.UserContext(c), actor, c.Params("id")); err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) RevokeOrLeaveShare(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.RevokeOrLeaveShare(ledger.UserContext(c), actor, c.Params("id")); err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) SharedAccounts(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Service.SharedAccounts(ledger.UserContext(c), actor, c.Params("ownerId"))
	if err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) SharedTransactions(c *fiber.Ctx) error {
	actor, ok := ledger.ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Service.SharedTransactions(ledger.UserContext(c), actor, c.Params("ownerId"), c.QueryInt("limit"))
	if err != nil {
		return ledger.Respond(c, err)
	}
	return c.JSON(items)
}
