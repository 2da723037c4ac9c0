package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/config"
	"github.com/spec-kit/cinemax-auth/internal/domain"
	"github.com/spec-kit/cinemax-auth/internal/persistence"
	"github.com/spec-kit/cinemax-auth/internal/repository"
)

type stores struct {
	postgres    *persistence.Postgres
	customers   repository.AccountRepository
	staff       repository.AccountRepository
	diagnostics repository.DiagnosticsRepository
}

// openStores connects to Postgres, or falls back to in-memory account stores
// when no DSN is configured.
func openStores(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*stores, error) {
	pg, err := persistence.NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if !pg.Configured() {
		logger.Warn("using in-memory account stores; data is lost on restart")
		return &stores{
			postgres:  pg,
			customers: repository.NewMemoryAccountRepository(domain.UserTypeCustomer),
			staff:     repository.NewMemoryAccountRepository(domain.UserTypeStaff),
		}, nil
	}

	pool := pg.PoolHandle()
	return &stores{
		postgres:    pg,
		customers:   repository.NewCustomerRepository(pool),
		staff:       repository.NewStaffRepository(pool),
		diagnostics: repository.NewDiagnosticsRepository(pool),
	}, nil
}

func (s *stores) Close() {
	s.postgres.Close()
}
