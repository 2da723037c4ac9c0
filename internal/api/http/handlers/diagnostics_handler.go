package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/repository"
	apperrors "github.com/spec-kit/cinemax-auth/pkg/util/errorutil"
)

// DiagnosticsHandler exposes read-only schema introspection to authenticated callers.
type DiagnosticsHandler struct {
	repo   repository.DiagnosticsRepository
	logger *zap.Logger
}

// NewDiagnosticsHandler constructs handler. repo is nil when no database is configured.
func NewDiagnosticsHandler(repo repository.DiagnosticsRepository, logger *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{repo: repo, logger: logger}
}

// ListTables handles GET /api/auth/listar-tablas.
func (h *DiagnosticsHandler) ListTables(c *fiber.Ctx) error {
	if h.repo == nil {
		return apperrors.NewDomainError("DATABASE_UNAVAILABLE", "Error interno listando tablas", fiber.StatusInternalServerError, nil)
	}

	tables, err := h.repo.ListTables(c.UserContext())
	if err != nil {
		h.logger.Error("list tables failed", zap.Error(err))
		return &apperrors.DomainError{
			Code:       "INTERNAL_ERROR",
			Message:    "Error interno listando tablas",
			HTTPStatus: fiber.StatusInternalServerError,
			Err:        err,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"tables":  tables,
		"message": fmt.Sprintf("Se encontraron %d tablas", len(tables)),
	})
}
