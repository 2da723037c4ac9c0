package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/cinemax-auth/internal/auth"
	"github.com/spec-kit/cinemax-auth/internal/config"
	"github.com/spec-kit/cinemax-auth/internal/domain"
	"github.com/spec-kit/cinemax-auth/internal/events"
	"github.com/spec-kit/cinemax-auth/internal/observability"
	"github.com/spec-kit/cinemax-auth/internal/repository"
	"github.com/spec-kit/cinemax-auth/internal/validation"
	apperrors "github.com/spec-kit/cinemax-auth/pkg/util/errorutil"
)

const (
	msgCustomerNotFound = "Cliente no encontrado o inactivo"
	msgStaffNotFound    = "Trabajador no encontrado o inactivo"
	msgWrongPassword    = "Contraseña incorrecta"
	msgUsernameTaken    = "El username ya está en uso"
	msgEmailTaken       = "El correo ya está registrado"
	msgProfileNotFound  = "Usuario no encontrado"
	msgValueTooLong     = "Datos demasiado largos"
)

// LoginInput is the raw login form.
type LoginInput struct {
	Username string
	Password string
	UserType string
}

// LoginResult carries the issued token and the public account projection.
type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// RegisterInput is the raw registration form. Any role supplied by a caller is ignored.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Phone    string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts   map[domain.UserType]repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	CustomerRepo repository.AccountRepository
	StaffRepo    repository.AccountRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	return &AuthService{
		accounts: map[domain.UserType]repository.AccountRepository{
			domain.UserTypeCustomer: deps.CustomerRepo,
			domain.UserTypeStaff:    deps.StaffRepo,
		},
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Login authenticates a customer or staff member and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validation.ValidateLogin(validation.Login{
		Username: in.Username,
		Password: in.Password,
		UserType: in.UserType,
	}); err != nil {
		s.metrics.RecordAuth("login", in.UserType, "invalid")
		return nil, validationError(err)
	}

	userType := domain.UserType(in.UserType)
	repo, err := s.repoFor(userType)
	if err != nil {
		return nil, err
	}

	account, err := repo.GetActiveByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordAuth("login", in.UserType, "unknown_user")
			return nil, apperrors.NewUnauthorized(notFoundMessage(userType))
		}
		return nil, apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(account.PasswordHash, in.Password); err != nil {
		s.metrics.RecordAuth("login", in.UserType, "bad_password")
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("stored password hash unusable",
				zap.String("user_type", in.UserType),
				zap.Int64("account_id", account.ID),
				zap.Error(err))
		}
		return nil, apperrors.NewUnauthorized(msgWrongPassword)
	}

	recorded := true
	if err := repo.TouchLastLogin(ctx, account.ID); err != nil {
		recorded = false
		s.logger.Warn("failed to record last login",
			zap.String("user_type", in.UserType),
			zap.Int64("account_id", account.ID),
			zap.Error(err))
	}

	token, exp, err := s.tokenMgr.GenerateToken(auth.ClaimsFor(account))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("login", in.UserType, "success")
	_ = s.dispatcher.Publish(ctx, events.NewAccountEvent(events.EventAccountLoggedIn, account,
		events.AccountLoggedInPayload{LastLoginRecorded: recorded}))

	account.PasswordHash = ""
	return &LoginResult{Account: account, Token: token, ExpiresAt: exp}, nil
}

// Register creates a new account in the given user class. Staff accounts
// always start with the lowest-privilege role.
func (s *AuthService) Register(ctx context.Context, userType domain.UserType, in RegisterInput) (*domain.Account, error) {
	repo, err := s.repoFor(userType)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateRegistration(validation.Registration{
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
	}); err != nil {
		s.metrics.RecordAuth("register", string(userType), "invalid")
		return nil, validationError(err)
	}

	existing, err := repo.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("check existing accounts: %w", err))
	}
	for _, acc := range existing {
		if acc.Username == in.Username {
			s.metrics.RecordAuth("register", string(userType), "duplicate")
			return nil, apperrors.NewDuplicateError("username", msgUsernameTaken)
		}
		if acc.Email == in.Email {
			s.metrics.RecordAuth("register", string(userType), "duplicate")
			return nil, apperrors.NewDuplicateError("correo", msgEmailTaken)
		}
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	account := &domain.Account{
		UserType:     userType,
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		Active:       true,
	}
	if in.Phone != "" {
		phone := in.Phone
		account.Phone = &phone
	}
	if userType == domain.UserTypeStaff {
		role := domain.DefaultStaffRole
		account.Role = &role
	}

	if err := repo.Create(ctx, account); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			s.metrics.RecordAuth("register", string(userType), "duplicate")
			if dup.Field == "correo" {
				return nil, apperrors.NewDuplicateError("correo", msgEmailTaken)
			}
			return nil, apperrors.NewDuplicateError("username", msgUsernameTaken)
		}
		if errors.Is(err, repository.ErrValueTooLong) {
			s.metrics.RecordAuth("register", string(userType), "invalid")
			return nil, apperrors.NewValidationError(msgValueTooLong, nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("register", string(userType), "success")
	_ = s.dispatcher.Publish(ctx, events.NewAccountEvent(events.EventAccountRegistered, account,
		events.AccountRegisteredPayload{Role: account.Role}))

	account.PasswordHash = ""
	return account, nil
}

// VerifyToken decodes a session token. Every failure surfaces as the same
// unauthorized error.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		s.logger.Debug("token verification failed", zap.Error(err))
		return nil, apperrors.NewUnauthorized("Token inválido o expirado")
	}
	return claims, nil
}

// Profile loads the active account a verified token refers to.
func (s *AuthService) Profile(ctx context.Context, claims *auth.Claims) (*domain.Account, error) {
	repo, err := s.repoFor(claims.UserType)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Token inválido o expirado")
	}

	account, err := repo.GetActiveByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(msgProfileNotFound)
		}
		return nil, apperrors.NewInternalError(err)
	}
	account.PasswordHash = ""
	return account, nil
}

func (s *AuthService) repoFor(userType domain.UserType) (repository.AccountRepository, error) {
	repo, ok := s.accounts[userType]
	if !ok || repo == nil {
		return nil, apperrors.NewValidationError(`userType debe ser "cliente" o "trabajador"`, nil)
	}
	return repo, nil
}

func notFoundMessage(userType domain.UserType) string {
	if userType == domain.UserTypeStaff {
		return msgStaffNotFound
	}
	return msgCustomerNotFound
}

func validationError(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return apperrors.NewValidationError(verr.Message, map[string]any{"field": verr.Field})
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
