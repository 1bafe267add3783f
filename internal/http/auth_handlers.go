package http

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/brennuck/sprout/internal/domain"
)

type AuthHandler struct {
	DB *pgxpool.Pool
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func generateToken(userID string) (string, error) {
	secret := []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var body signupRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	ctx := userContext(c)

	var userID string
	err = h.DB.QueryRow(
		ctx,
		`INSERT INTO users (email, password_hash, full_name)
         VALUES ($1, $2, NULLIF($3, ''))
         RETURNING id`,
		body.Email, string(hashed), strings.TrimSpace(body.FullName),
	).Scan(&userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
	}

	token, err := generateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(authResponse{Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var (
		userID       string
		passwordHash string
	)

	ctx := userContext(c)
	err := h.DB.QueryRow(
		ctx,
		`SELECT id, password_hash FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(body.Email),
	).Scan(&userID, &passwordHash)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := generateToken(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(authResponse{Token: token})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if strings.TrimSpace(uid) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var u domain.User
	err := h.DB.QueryRow(
		userContext(c),
		`SELECT id::text, email, full_name, created_at FROM users WHERE id = $1::uuid`,
		uid,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	return c.JSON(u)
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
