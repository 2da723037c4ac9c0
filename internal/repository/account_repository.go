package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

// ErrNotFound is returned when no active row matches.
var ErrNotFound = errors.New("account not found")

// ErrValueTooLong is returned when an inserted value exceeds its column width.
var ErrValueTooLong = errors.New("value exceeds column length")

const (
	uniqueViolation = "23505"
	stringTooLong   = "22001"
)

// DuplicateError reports a uniqueness constraint violation on insert.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// AccountRepository is the credential store accessor for one user class.
type AccountRepository interface {
	GetActiveByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetActiveByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	TouchLastLogin(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// accountTable describes where a user class is stored. Identifiers are fixed
// at compile time and never derived from request input.
type accountTable struct {
	userType      domain.UserType
	table         string
	idColumn      string
	createdColumn string
	hasRole       bool
	usernameIndex string
	emailIndex    string
	selectColumns string
}

var customerTable = accountTable{
	userType:      domain.UserTypeCustomer,
	table:         "clientes",
	idColumn:      "id_cliente",
	createdColumn: "fecha_registro",
	usernameIndex: "clientes_username_key",
	emailIndex:    "clientes_correo_key",
	selectColumns: "id_cliente, username, password_hash, nombre, correo, telefono, NULL::TEXT, activo, fecha_ultimo_login, fecha_registro",
}

var staffTable = accountTable{
	userType:      domain.UserTypeStaff,
	table:         "trabajadores",
	idColumn:      "id_trabajador",
	createdColumn: "fecha_creacion",
	hasRole:       true,
	usernameIndex: "trabajadores_username_key",
	emailIndex:    "trabajadores_correo_key",
	selectColumns: "id_trabajador, username, password_hash, nombre, correo, telefono, rol, activo, fecha_ultimo_login, fecha_creacion",
}

type accountRepository struct {
	pool *pgxpool.Pool
	t    accountTable
}

// NewCustomerRepository returns the accessor for the clientes table.
func NewCustomerRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool, t: customerTable}
}

// NewStaffRepository returns the accessor for the trabajadores table.
func NewStaffRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool, t: staffTable}
}

func (t accountTable) activeByUsernameQuery() string {
	return fmt.Sprintf(`
        SELECT %s
        FROM %s WHERE username=$1 AND activo=true`, t.selectColumns, t.table)
}

func (t accountTable) activeByIDQuery() string {
	return fmt.Sprintf(`
        SELECT %s
        FROM %s WHERE %s=$1 AND activo=true`, t.selectColumns, t.table, t.idColumn)
}

func (t accountTable) usernameOrEmailQuery() string {
	return fmt.Sprintf(`
        SELECT %s
        FROM %s WHERE username=$1 OR correo=$2`, t.selectColumns, t.table)
}

func (t accountTable) insertQuery() string {
	if t.hasRole {
		return fmt.Sprintf(`
        INSERT INTO %s (username, password_hash, nombre, correo, telefono, rol)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s, activo, %s`, t.table, t.idColumn, t.createdColumn)
	}
	return fmt.Sprintf(`
        INSERT INTO %s (username, password_hash, nombre, correo, telefono)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s, activo, %s`, t.table, t.idColumn, t.createdColumn)
}

func (t accountTable) touchLastLoginQuery() string {
	return fmt.Sprintf(`
        UPDATE %s SET fecha_ultimo_login=CURRENT_TIMESTAMP
        WHERE %s=$1`, t.table, t.idColumn)
}

func (t accountTable) countQuery() string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.table)
}

func (r *accountRepository) GetActiveByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := r.scanAccount(r.pool.QueryRow(ctx, r.t.activeByUsernameQuery(), username))
	if err != nil {
		return nil, fmt.Errorf("get %s by username: %w", r.t.table, err)
	}
	return account, nil
}

func (r *accountRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := r.scanAccount(r.pool.QueryRow(ctx, r.t.activeByIDQuery(), id))
	if err != nil {
		return nil, fmt.Errorf("get %s by id: %w", r.t.table, err)
	}
	return account, nil
}

func (r *accountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, r.t.usernameOrEmailQuery(), username, email)
	if err != nil {
		return nil, fmt.Errorf("find %s by username or email: %w", r.t.table, err)
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := []any{account.Username, account.PasswordHash, account.Name, account.Email, account.Phone}
	if r.t.hasRole {
		role := domain.DefaultStaffRole
		if account.Role != nil {
			role = *account.Role
		}
		args = append(args, role)
		account.Role = &role
	} else {
		account.Role = nil
	}

	if err := r.pool.QueryRow(ctx, r.t.insertQuery(), args...).Scan(&account.ID, &account.Active, &account.CreatedAt); err != nil {
		return r.insertError(err)
	}
	account.UserType = r.t.userType
	return nil
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, r.t.touchLastLoginQuery(), id)
	if err != nil {
		return fmt.Errorf("touch %s last login: %w", r.t.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, r.t.countQuery()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.t.table, err)
	}
	return count, nil
}

func (r *accountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account domain.Account
		role    *string
	)
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Name,
		&account.Email,
		&account.Phone,
		&role,
		&account.Active,
		&account.LastLoginAt,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	account.UserType = r.t.userType
	if r.t.hasRole && role != nil {
		staffRole := domain.StaffRole(*role)
		account.Role = &staffRole
	}
	return &account, nil
}

// insertError classifies a failed insert: unique violations become
// *DuplicateError and over-long values wrap ErrValueTooLong.
func (r *accountRepository) insertError(err error) error {
	if dup := r.duplicateFrom(err); dup != nil {
		return dup
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == stringTooLong {
		return fmt.Errorf("insert %s: %w: %w", r.t.table, ErrValueTooLong, err)
	}
	return fmt.Errorf("insert %s: %w", r.t.table, err)
}

// duplicateFrom maps a unique violation raised by the insert to the colliding field.
func (r *accountRepository) duplicateFrom(err error) *DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case r.t.emailIndex:
		return &DuplicateError{Field: "correo"}
	case r.t.usernameIndex:
		return &DuplicateError{Field: "username"}
	}
	if pgErr.ColumnName == "correo" {
		return &DuplicateError{Field: "correo"}
	}
	return &DuplicateError{Field: "username"}
}
