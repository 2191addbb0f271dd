package server

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/Yahya-Naji/iron-knowledge/internal/middleware"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput is the payload for POST /api/auth/login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login for staff users. Customers never log
// in; they interact only through tokenized links.
func (s *Server) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if input.Username == "" || input.Password == "" {
		return respondError(c, models.NewValidationError("Username and password are required"))
	}

	var staff models.StaffUser
	err := s.db.WithContext(c.UserContext()).
		Where("username = ?", input.Username).
		First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(input.Password)) != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	// Subject must be a string for the auth middleware to parse it back.
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(staff.ID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "staff login",
		slog.String("username", staff.Username),
		slog.Uint64("staff_id", uint64(staff.ID)))

	return respondSuccess(c, fiber.StatusOK, fiber.Map{
		"token": signed,
		"user": fiber.Map{
			"id":       staff.ID,
			"username": staff.Username,
			"email":    staff.Email,
			"is_admin": staff.IsAdmin,
		},
	})
}
