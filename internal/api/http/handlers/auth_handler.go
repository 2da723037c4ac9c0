package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinemax-auth/internal/api/dto"
	"github.com/spec-kit/cinemax-auth/internal/auth"
	"github.com/spec-kit/cinemax-auth/internal/domain"
	"github.com/spec-kit/cinemax-auth/internal/service"
	apperrors "github.com/spec-kit/cinemax-auth/pkg/util/errorutil"
)

// AuthHandler exposes the /api/auth endpoints for customers and staff.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Cuerpo de la petición inválido", nil)
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		UserType: req.UserType,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Success:   true,
		Message:   fmt.Sprintf("¡Bienvenido %s!", result.Account.Name),
		User:      dto.NewLoginUser(result.Account),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// RegisterCustomer handles POST /api/auth/register/cliente.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	return h.register(c, domain.UserTypeCustomer, "Cliente registrado exitosamente")
}

// RegisterStaff handles POST /api/auth/register/trabajador.
func (h *AuthHandler) RegisterStaff(c *fiber.Ctx) error {
	return h.register(c, domain.UserTypeStaff, "Trabajador registrado exitosamente")
}

func (h *AuthHandler) register(c *fiber.Ctx, userType domain.UserType, message string) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Cuerpo de la petición inválido", nil)
	}

	account, err := h.auth.Register(c.UserContext(), userType, service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Nombre,
		Email:    req.Correo,
		Phone:    req.Telefono,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Success: true,
		Message: message,
		User:    dto.NewRegisteredUser(account),
	})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Token no proporcionado")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    claims,
	})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Token no proporcionado")
	}

	account, err := h.auth.Profile(c.UserContext(), claims)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    dto.NewProfileUser(account),
	})
}
