package admin

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

type latestUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type OverviewResponse struct {
	UsersTotal        int64        `json:"users_total"`
	AccountsTotal     int64        `json:"accounts_total"`
	TransactionsTotal int64        `json:"transactions_total"`
	SharesTotal       int64        `json:"shares_total"`
	LatestUsers       []latestUser `json:"latest_users"`
}

// Overview is an operator-only snapshot of table sizes and recent signups.
func (h *Handler) Overview(c *fiber.Ctx) error {
	adminKey := strings.TrimSpace(os.Getenv("ADMIN_KEY"))
	if adminKey == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "ADMIN_KEY not set on server")
	}

	reqKey := strings.TrimSpace(c.Get("X-Admin-Key"))
	if reqKey == "" || reqKey != adminKey {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	ctx := c.UserContext()

	var resp OverviewResponse
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&resp.UsersTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed users_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&resp.AccountsTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed accounts_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&resp.TransactionsTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed transactions_total: "+err.Error())
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM dashboard_shares`).Scan(&resp.SharesTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed shares_total: "+err.Error())
	}

	rows, err := h.Pool.Query(ctx, `
		SELECT id::text, email, created_at::text
		FROM users
		ORDER BY created_at DESC
		LIMIT 20`)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users: "+err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var u latestUser
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed scan latest_users: "+err.Error())
		}
		resp.LatestUsers = append(resp.LatestUsers, u)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users rows: "+err.Error())
	}

	return c.JSON(resp)
}
