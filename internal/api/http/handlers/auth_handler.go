package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/complain-service/internal/api/dto"
	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/service"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth      AuthService
	validator Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService, validator Validator) *AuthHandler {
	return &AuthHandler{auth: authService, validator: validator}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decode(c, h.validator, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Message: "Login successful", Data: authResponse(result)})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := decode(c, h.validator, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Envelope{Message: "Registration successful", Data: authResponse(result)})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthenticated.")
	}
	return c.JSON(dto.Envelope{Message: "User profile retrieved", Data: userResponse(principal.User)})
}

// Logout handles POST /logout. Only the presented token is revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Message: "Logout successful"})
}

type normalizer interface {
	Normalize()
}

// decode parses the JSON body into req, normalizes and validates it.
func decode(c *fiber.Ctx, validator Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	return validator.Struct(req)
}
