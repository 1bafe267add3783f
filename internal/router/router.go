package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brennuck/sprout/internal/admin"
	"github.com/brennuck/sprout/internal/assistant"
	"github.com/brennuck/sprout/internal/backup"
	handlers "github.com/brennuck/sprout/internal/http"
	"github.com/brennuck/sprout/internal/ledger"
	"github.com/brennuck/sprout/internal/reports"
	"github.com/brennuck/sprout/internal/sharing"
)

type Router struct {
	AuthHandler      *handlers.AuthHandler
	LedgerHandler    *ledger.Handler
	SharingHandler   *sharing.Handler
	BackupHandler    *backup.Handler
	AssistantHandler *assistant.Handler
	ReportsHandler   *reports.Handler
	AdminHandler     *admin.Handler
	AuthMW           fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		app.Post("/api/auth/signup", RateLimitAuth(), r.AuthHandler.Signup)
		app.Post("/api/auth/login", RateLimitAuth(), r.AuthHandler.Login)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	if r.LedgerHandler != nil {
		app.Get("/api/accounts", r.AuthMW, r.LedgerHandler.ListAccounts)
		app.Post("/api/accounts", RateLimitWrite(), r.AuthMW, r.LedgerHandler.CreateAccount)
		app.Delete("/api/accounts/:id", r.AuthMW, r.LedgerHandler.DeleteAccount)

		app.Get("/api/transactions", r.AuthMW, r.LedgerHandler.ListTransactions)
		app.Post("/api/transactions", RateLimitWrite(), r.AuthMW, r.LedgerHandler.CreateTransaction)
		app.Delete("/api/transactions/:id", r.AuthMW, r.LedgerHandler.DeleteTransaction)

		app.Post("/api/transfers", RateLimitWrite(), r.AuthMW, r.LedgerHandler.CreateTransfer)
		app.Delete("/api/transfers/:id", r.AuthMW, r.LedgerHandler.DeleteTransfer)
	}

	if r.SharingHandler != nil {
		app.Get("/api/invitations", r.AuthMW, r.SharingHandler.GetOverview)
		app.Post("/api/invitations", RateLimitWrite(), r.AuthMW, r.SharingHandler.SendInvitation)
		app.Delete("/api/invitations/:id", r.AuthMW, r.SharingHandler.CancelInvitation)
		app.Post("/api/invitations/:id/accept", r.AuthMW, r.SharingHandler.AcceptInvitation)
		app.Post("/api/invitations/:id/decline", r.AuthMW, r.SharingHandler.DeclineInvitation)
		app.Delete("/api/shares/:id", r.AuthMW, r.SharingHandler.RevokeOrLeaveShare)

		app.Get("/api/shared/:ownerId/accounts", r.AuthMW, r.SharingHandler.SharedAccounts)
		app.Get("/api/shared/:ownerId/transactions", r.AuthMW, r.SharingHandler.SharedTransactions)
	}

	if r.BackupHandler != nil {
		app.Get("/api/data/download", r.AuthMW, r.BackupHandler.Download)
		app.Post("/api/data/upload", RateLimitWrite(), r.AuthMW, r.BackupHandler.Upload)
	}

	if r.AssistantHandler != nil {
		app.Post("/api/chat", RateLimitWrite(), r.AuthMW, r.AssistantHandler.Chat)
	}

	if r.ReportsHandler != nil {
		app.Get("/api/reports/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)
	}

	if r.AdminHandler != nil {
		app.Get("/api/admin/overview", r.AdminHandler.Overview)
	}
}
