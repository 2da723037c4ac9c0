package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TableInfo names a base table visible to the service's database user.
type TableInfo struct {
	Name   string `json:"table_name"`
	Schema string `json:"table_schema"`
}

// DiagnosticsRepository exposes read-only schema introspection.
type DiagnosticsRepository interface {
	ListTables(ctx context.Context) ([]TableInfo, error)
}

type diagnosticsRepository struct {
	pool *pgxpool.Pool
}

// NewDiagnosticsRepository constructs repository.
func NewDiagnosticsRepository(pool *pgxpool.Pool) DiagnosticsRepository {
	return &diagnosticsRepository{pool: pool}
}

func (r *diagnosticsRepository) ListTables(ctx context.Context) ([]TableInfo, error) {
	const query = `
        SELECT table_name, table_schema
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
        ORDER BY table_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := []TableInfo{}
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.Name, &info.Schema); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, info)
	}
	return tables, rows.Err()
}
