package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brennuck/sprout/internal/admin"
	"github.com/brennuck/sprout/internal/assistant"
	"github.com/brennuck/sprout/internal/backup"
	apphttp "github.com/brennuck/sprout/internal/http"
	"github.com/brennuck/sprout/internal/ledger"
	"github.com/brennuck/sprout/internal/reports"
	"github.com/brennuck/sprout/internal/router"
	"github.com/brennuck/sprout/internal/sharing"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// Required for all JWT operations; fail fast if missing.
	_ = mustJWTSecret()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("error pinging database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Dev token endpoint
	if strings.EqualFold(os.Getenv("ENV"), "dev") {
		app.Get("/dev/token", func(c *fiber.Ctx) error {
			secret := mustJWTSecret()
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"user_id": "11111111-1111-1111-1111-111111111111",
			})
			signed, err := token.SignedString(secret)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(fiber.Map{"token": signed})
		})
	}

	ledgerService := ledger.NewService(pool)
	sharingService := sharing.NewService(pool, ledgerService)
	backupService := backup.NewService(pool)
	bridge := assistant.NewBridge(ledgerService, assistant.NewOpenAIFromEnv())

	r := &router.Router{
		AuthHandler:      &apphttp.AuthHandler{DB: pool},
		LedgerHandler:    ledger.NewHandler(ledgerService),
		SharingHandler:   sharing.NewHandler(sharingService),
		BackupHandler:    backup.NewHandler(backupService),
		AssistantHandler: assistant.NewHandler(bridge),
		ReportsHandler:   reports.NewHandler(pool),
		AdminHandler:     admin.NewHandler(pool),
		AuthMW:           buildJWTMiddleware(pool),
	}
	r.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on port", port)
	log.Fatal(app.Listen(":" + port))
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}

func buildJWTMiddleware(pool *pgxpool.Pool) fiber.Handler {
	secret := mustJWTSecret()

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userIDVal, ok := claims["user_id"].(string)
		if !ok || strings.TrimSpace(userIDVal) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userIDVal)
		c.Locals("userID", userIDVal)

		// Update last_seen_at (best-effort, do not block request)
		go func(uid string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = pool.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1::uuid`, uid)
		}(userIDVal)

		return c.Next()
	}
}

// mustJWTSecret loads JWT_SECRET from the environment or exits the process.
func mustJWTSecret() []byte {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return []byte(secret)
}
