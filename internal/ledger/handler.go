package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/brennuck/sprout/internal/domain"
	"github.com/brennuck/sprout/internal/money"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// ActorID pulls the authenticated user id set by the JWT middleware.
func ActorID(c *fiber.Ctx) (string, bool) {
	if v := c.Locals("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	if v := c.Locals("userID"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// UserContext returns the request-scoped context.
func UserContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Respond translates an operation error into the JSON error envelope.
func Respond(c *fiber.Ctx, err error) error {
	return c.Status(Status(err)).JSON(fiber.Map{"error": Message(err)})
}

type createTransactionRequest struct {
	AccountID   string      `json:"account_id"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Date        string      `json:"date"`
}

func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	amount, err := money.ParsePositive(body.Amount.String())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a positive number")
	}

	in := CreateTransactionInput{
		AccountID:   body.AccountID,
		Amount:      amount,
		Description: body.Description,
		Type:        domain.TransactionType(strings.ToUpper(strings.TrimSpace(body.Type))),
	}
	if strings.TrimSpace(body.Date) != "" {
		d, err := time.Parse(time.RFC3339, body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be RFC3339")
		}
		in.Date = &d
	}

	created, err := h.Service.CreateTransaction(UserContext(c), actor, in)
	if err != nil {
		return Respond(c, err)
	}
	return c.JSON(created)
}

func (h *Handler) DeleteTransaction(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.DeleteTransaction(UserContext(c), actor, c.Params("id")); err != nil {
		return Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Service.ListTransactions(UserContext(c), actor, c.QueryInt("limit"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load transactions")
	}
	return c.JSON(items)
}

type transferRequest struct {
	FromAccountID string      `json:"from_account_id"`
	ToAccountID   string      `json:"to_account_id"`
	Amount        json.Number `json:"amount"`
	Description   string      `json:"description"`
}

func (h *Handler) CreateTransfer(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body transferRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	amount, err := money.ParsePositive(body.Amount.String())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a positive number")
	}

	created, err := h.Service.Transfer(UserContext(c), actor, body.FromAccountID, body.ToAccountID, amount, body.Description)
	if err != nil {
		return Respond(c, err)
	}
	return c.JSON(created)
}

func (h *Handler) DeleteTransfer(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.DeleteTransfer(UserContext(c), actor, c.Params("id")); err != nil {
		return Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

type createAccountRequest struct {
	Name              string      `json:"name"`
	Type              string      `json:"type"`
	StartingBalance   json.Number `json:"starting_balance"`
	FundFromAccountID string      `json:"fund_from_account_id"`
	FundAmount        json.Number `json:"fund_amount"`
}

// optionalAmount parses a possibly-absent JSON amount; missing means zero.
func optionalAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return money.Parse(n.String())
}

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createAccountRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	starting, err := optionalAmount(body.StartingBalance)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "starting_balance must be a number")
	}
	fund, err := optionalAmount(body.FundAmount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "fund_amount must be a number")
	}

	created, err := h.Service.CreateAccount(UserContext(c), actor, CreateAccountInput{
		Name:              body.Name,
		Type:              domain.AccountType(strings.ToUpper(strings.TrimSpace(body.Type))),
		StartingBalance:   starting,
		FundFromAccountID: strings.TrimSpace(body.FundFromAccountID),
		FundAmount:        fund,
	})
	if err != nil {
		return Respond(c, err)
	}
	return c.JSON(created)
}

func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.Service.DeleteAccount(UserContext(c), actor, c.Params("id")); err != nil {
		return Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	actor, ok := ActorID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Service.ListAccounts(UserContext(c), actor)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load accounts")
	}
	return c.JSON(items)
}
