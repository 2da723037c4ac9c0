package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/cinemax-auth/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

const (
	msgMissingToken = "Token no proporcionado"
	msgInvalidToken = "Token inválido o expirado"
)

// TokenVerifier decodes and validates a raw bearer token.
type TokenVerifier interface {
	VerifyToken(token string) (*Claims, error)
}

// VerifierFunc adapts a function to TokenVerifier.
type VerifierFunc func(token string) (*Claims, error)

// VerifyToken calls f(token).
func (f VerifierFunc) VerifyToken(token string) (*Claims, error) {
	return f(token)
}

// AuthMiddleware validates bearer tokens and stores their claims on the request.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized(msgMissingToken)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized(msgMissingToken)
	}

	claims, err := m.verifier.VerifyToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized(msgInvalidToken)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the verified token claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
