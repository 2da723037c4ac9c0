package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/cinemax-auth/internal/api/http/handlers"
	"github.com/spec-kit/cinemax-auth/internal/auth"
	"github.com/spec-kit/cinemax-auth/internal/config"
	"github.com/spec-kit/cinemax-auth/internal/domain"
	"github.com/spec-kit/cinemax-auth/internal/observability"
	"github.com/spec-kit/cinemax-auth/internal/persistence"
	"github.com/spec-kit/cinemax-auth/internal/repository"
	"github.com/spec-kit/cinemax-auth/internal/service"
)

type stubDiagnostics struct {
	tables []repository.TableInfo
	err    error
}

func (s stubDiagnostics) ListTables(context.Context) ([]repository.TableInfo, error) {
	return s.tables, s.err
}

type testServer struct {
	app       *fiber.App
	customers *repository.MemoryAccountRepository
	staff     *repository.MemoryAccountRepository
	metrics   *observability.Metrics
}

func newTestServer(t *testing.T, diagnostics repository.DiagnosticsRepository) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.Config{
		App:  config.AppConfig{Name: "cinemax-auth", Version: "1.0.0"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 24, BcryptCost: bcrypt.MinCost},
	}

	ts := &testServer{
		customers: repository.NewMemoryAccountRepository(domain.UserTypeCustomer),
		staff:     repository.NewMemoryAccountRepository(domain.UserTypeStaff),
		metrics:   observability.NewMetrics(),
	}
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		CustomerRepo: ts.customers,
		StaffRepo:    ts.staff,
		Metrics:      ts.metrics,
		Logger:       logger,
	})

	ts.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, true)})
	RegisterMiddlewares(ts.app, MiddlewareConfig{
		Logger:       logger,
		Metrics:      ts.metrics,
		Timeout:      5 * time.Second,
		CORS:         config.CORSConfig{AllowOrigins: "*"},
		ExposeErrors: true,
	})
	RegisterRoutes(ts.app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, &persistence.Redis{}, ts.metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Diagnostics:    handlers.NewDiagnosticsHandler(diagnostics, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded, string(raw)
}

func anaRegistration() map[string]any {
	return map[string]any{
		"username": "anagp",
		"password": "Secret123",
		"nombre":   "Ana Gomez",
		"correo":   "ana@example.com",
	}
}

func TestCustomerRegisterLoginVerifyProfile(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body, raw := ts.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	require.Equal(t, fiber.StatusCreated, status, raw)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Cliente registrado exitosamente", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "cliente", user["userType"])
	assert.Equal(t, "anagp", user["username"])
	assert.Equal(t, "ana@example.com", user["correo"])
	assert.NotContains(t, user, "rol")
	assert.NotContains(t, strings.ToLower(raw), "password")

	status, body, raw = ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "anagp",
		"password": "Secret123",
		"userType": "cliente",
	})
	require.Equal(t, fiber.StatusOK, status, raw)
	assert.Equal(t, "¡Bienvenido Ana Gomez!", body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user = body["user"].(map[string]any)
	assert.Equal(t, "anagp", user["username"])
	assert.Equal(t, "Ana Gomez", user["name"])
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, strings.ToLower(raw), "password")

	status, body, raw = ts.do(t, fiber.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, fiber.StatusOK, status, raw)
	claims := body["user"].(map[string]any)
	assert.Equal(t, "anagp", claims["username"])
	assert.Equal(t, "cliente", claims["userType"])
	assert.NotContains(t, claims, "rol")

	status, body, raw = ts.do(t, fiber.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status, raw)
	profile := body["user"].(map[string]any)
	assert.Equal(t, "Ana Gomez", profile["nombre"])
	assert.NotNil(t, profile["fecha_registro"])
	assert.NotNil(t, profile["fecha_ultimo_login"])
	assert.NotContains(t, profile, "fecha_creacion")
	assert.NotContains(t, strings.ToLower(raw), "password")
}

func TestStaffRegisterIgnoresRequestedRole(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body, raw := ts.do(t, fiber.MethodPost, "/api/auth/register/trabajador", "", map[string]any{
		"username": "pedroempleado",
		"password": "Secret123",
		"nombre":   "Pedro Ruiz",
		"correo":   "pedro@example.com",
		"telefono": "600 123 456",
		"rol":      "admin",
	})
	require.Equal(t, fiber.StatusCreated, status, raw)
	assert.Equal(t, "Trabajador registrado exitosamente", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "trabajador", user["userType"])
	assert.Equal(t, "empleado", user["rol"])
	assert.Equal(t, "600 123 456", user["telefono"])

	status, body, raw = ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "pedroempleado",
		"password": "Secret123",
		"userType": "trabajador",
	})
	require.Equal(t, fiber.StatusOK, status, raw)
	token := body["token"].(string)

	status, body, raw = ts.do(t, fiber.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status, raw)
	profile := body["user"].(map[string]any)
	assert.Equal(t, "empleado", profile["rol"])
	assert.NotNil(t, profile["fecha_creacion"])
	assert.NotContains(t, profile, "fecha_registro")
}

func TestRegisterErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	status, _, raw := ts.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	require.Equal(t, fiber.StatusCreated, status, raw)

	dupEmail := anaRegistration()
	dupEmail["username"] = "anaotra"
	invalidName := anaRegistration()
	invalidName["nombre"] = "Ana 123"
	longName := anaRegistration()
	longName["username"] = "analarga"
	longName["correo"] = "larga@example.com"
	longName["nombre"] = strings.Repeat("a", 101)
	longPhone := anaRegistration()
	longPhone["username"] = "anatelefono"
	longPhone["correo"] = "telefono@example.com"
	longPhone["telefono"] = "+57 (300) 123-4567 89"

	tests := []struct {
		name  string
		path  string
		body  any
		code  string
		field string
	}{
		{"duplicate username", "/api/auth/register/cliente", anaRegistration(), "DUPLICATE", "username"},
		{"duplicate email", "/api/auth/register/cliente", dupEmail, "DUPLICATE", "correo"},
		{"invalid name", "/api/auth/register/trabajador", invalidName, "VALIDATION_FAILED", "nombre"},
		{"name over column width", "/api/auth/register/cliente", longName, "VALIDATION_FAILED", "nombre"},
		{"phone over column width", "/api/auth/register/trabajador", longPhone, "VALIDATION_FAILED", "telefono"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, raw := ts.do(t, fiber.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status, raw)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			details, _ := body["details"].(map[string]any)
			assert.Equal(t, tt.field, details["field"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	status, _, raw := ts.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	require.Equal(t, fiber.StatusCreated, status, raw)

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"wrong password", map[string]any{"username": "anagp", "password": "Wrong1234", "userType": "cliente"}, fiber.StatusUnauthorized, "Contraseña incorrecta"},
		{"wrong class", map[string]any{"username": "anagp", "password": "Secret123", "userType": "trabajador"}, fiber.StatusUnauthorized, "Trabajador no encontrado o inactivo"},
		{"unknown user", map[string]any{"username": "nadie", "password": "Secret123", "userType": "cliente"}, fiber.StatusUnauthorized, "Cliente no encontrado o inactivo"},
		{"invalid user type", map[string]any{"username": "anagp", "password": "Secret123", "userType": "admin"}, fiber.StatusBadRequest, ""},
		{"dotted username", map[string]any{"username": "ana.gp", "password": "Secret123", "userType": "cliente"}, fiber.StatusBadRequest, "Usuario solo puede contener letras"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, raw := ts.do(t, fiber.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.status, status, raw)
			assert.Equal(t, false, body["success"])
			assert.NotContains(t, body, "token")
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/api/auth/verify", "/api/auth/profile", "/api/auth/listar-tablas"} {
		status, body, _ := ts.do(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "Token no proporcionado", body["message"])

		status, body, _ = ts.do(t, fiber.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "Token inválido o expirado", body["message"])
	}
}

func TestProfileOfDeactivatedAccount(t *testing.T) {
	ts := newTestServer(t, nil)
	status, body, raw := ts.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	require.Equal(t, fiber.StatusCreated, status, raw)
	id := int64(body["user"].(map[string]any)["id"].(float64))

	_, body, _ = ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "anagp", "password": "Secret123", "userType": "cliente",
	})
	token := body["token"].(string)

	require.True(t, ts.customers.SetActive(id, false))

	status, body, _ = ts.do(t, fiber.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Usuario no encontrado", body["message"])
}

func TestListTables(t *testing.T) {
	diagnostics := stubDiagnostics{tables: []repository.TableInfo{
		{Name: "clientes", Schema: "public"},
		{Name: "trabajadores", Schema: "public"},
	}}
	ts := newTestServer(t, diagnostics)
	_, _, _ = ts.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	_, body, _ := ts.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "anagp", "password": "Secret123", "userType": "cliente",
	})
	token := body["token"].(string)

	status, body, raw := ts.do(t, fiber.MethodGet, "/api/auth/listar-tablas", token, nil)
	require.Equal(t, fiber.StatusOK, status, raw)
	assert.Equal(t, "Se encontraron 2 tablas", body["message"])
	assert.Len(t, body["tables"], 2)

	failing := newTestServer(t, stubDiagnostics{err: errors.New("boom")})
	_, _, _ = failing.do(t, fiber.MethodPost, "/api/auth/register/cliente", "", anaRegistration())
	_, body, _ = failing.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"username": "anagp", "password": "Secret123", "userType": "cliente",
	})
	status, body, _ = failing.do(t, fiber.MethodGet, "/api/auth/listar-tablas", body["token"].(string), nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Error interno listando tablas", body["message"])
	assert.Equal(t, "boom", body["error"])
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body, _ := ts.do(t, fiber.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Servidor CineMax funcionando correctamente", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "in-memory", body["database"])

	status, body, _ = ts.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "in-memory", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	status, body, _ = ts.do(t, fiber.MethodGet, "/", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "API CineMax Backend", body["message"])

	status, body, _ = ts.do(t, fiber.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["requests"])
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body, _ := ts.do(t, fiber.MethodGet, "/api/peliculas", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Ruta no encontrada: GET /api/peliculas", body["message"])
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/health/live", nil)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))

	req = httptest.NewRequest(fiber.MethodGet, "/health/live", nil)
	req.Header.Set(observability.RequestIDHeader, "abc-123")
	resp, err = ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(observability.RequestIDHeader))
}
