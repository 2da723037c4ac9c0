package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/auth"
	"github.com/spec-kit/cinemax-auth/internal/domain"
	"github.com/spec-kit/cinemax-auth/internal/repository"
)

// DemoAccount is a fixture account created by the seed command.
type DemoAccount struct {
	Username string
	Password string
	Name     string
	Email    string
	Phone    string
	Role     domain.StaffRole
}

// DemoCustomers share the password cliente123.
var DemoCustomers = []DemoAccount{
	{Username: "juanperez", Password: "cliente123", Name: "Juan Pérez", Email: "juan.perez@email.com", Phone: "123-456-7890"},
	{Username: "anag", Password: "cliente123", Name: "Ana García", Email: "ana.garcia@email.com", Phone: "098-765-4321"},
	{Username: "carlosl", Password: "cliente123", Name: "Carlos López", Email: "carlos.lopez@email.com", Phone: "555-123-4567"},
}

// DemoStaff covers one account per role.
var DemoStaff = []DemoAccount{
	{Username: "admin", Password: "admin123", Name: "Administrador Principal", Email: "admin@cinemax.com", Phone: "555-000-0001", Role: domain.StaffRoleAdmin},
	{Username: "mariagerente", Password: "gerente123", Name: "María González", Email: "maria.gonzalez@cinemax.com", Phone: "555-000-0002", Role: domain.StaffRoleManager},
	{Username: "pedroempleado", Password: "empleado123", Name: "Pedro Rodríguez", Email: "pedro.rodriguez@cinemax.com", Phone: "555-000-0003", Role: domain.StaffRoleEmployee},
}

// SeedService inserts demo accounts into empty stores.
type SeedService struct {
	customers  repository.AccountRepository
	staff      repository.AccountRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeedService constructs service.
func NewSeedService(customers, staff repository.AccountRepository, bcryptCost int, logger *zap.Logger) *SeedService {
	return &SeedService{customers: customers, staff: staff, bcryptCost: bcryptCost, logger: logger}
}

// Seed fills each store that has no rows yet and returns how many accounts were created.
func (s *SeedService) Seed(ctx context.Context) (int, error) {
	created := 0

	n, err := s.seedStore(ctx, s.customers, domain.UserTypeCustomer, DemoCustomers)
	created += n
	if err != nil {
		return created, err
	}

	n, err = s.seedStore(ctx, s.staff, domain.UserTypeStaff, DemoStaff)
	created += n
	return created, err
}

func (s *SeedService) seedStore(ctx context.Context, repo repository.AccountRepository, userType domain.UserType, fixtures []DemoAccount) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s accounts: %w", userType, err)
	}
	if count > 0 {
		s.logger.Info("accounts already present; skipping seed",
			zap.String("user_type", string(userType)),
			zap.Int64("count", count))
		return 0, nil
	}

	created := 0
	for _, fx := range fixtures {
		hash, err := auth.HashPassword(fx.Password, s.bcryptCost)
		if err != nil {
			return created, fmt.Errorf("hash password for %s: %w", fx.Username, err)
		}

		phone := fx.Phone
		account := &domain.Account{
			UserType:     userType,
			Username:     fx.Username,
			PasswordHash: hash,
			Name:         fx.Name,
			Email:        fx.Email,
			Phone:        &phone,
			Active:       true,
		}
		if userType == domain.UserTypeStaff {
			role := fx.Role
			account.Role = &role
		}

		if err := repo.Create(ctx, account); err != nil {
			return created, fmt.Errorf("create %s %s: %w", userType, fx.Username, err)
		}
		created++
	}

	s.logger.Info("seeded demo accounts",
		zap.String("user_type", string(userType)),
		zap.Int("count", created))
	return created, nil
}
