package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

// MemoryAccountRepository is a process-local AccountRepository used when no
// database is configured. It enforces the same uniqueness rules as the SQL schema.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	userType domain.UserType
	nextID   int64
	rows     map[int64]*domain.Account
	now      func() time.Time
}

// NewMemoryAccountRepository builds an empty store for one user class.
func NewMemoryAccountRepository(userType domain.UserType) *MemoryAccountRepository {
	return &MemoryAccountRepository{
		userType: userType,
		rows:     make(map[int64]*domain.Account),
		now:      time.Now,
	}
}

func (r *MemoryAccountRepository) GetActiveByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Username == username && row.Active {
			return cloneAccount(row), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAccountRepository) GetActiveByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.Active {
		return nil, ErrNotFound
	}
	return cloneAccount(row), nil
}

func (r *MemoryAccountRepository) FindByUsernameOrEmail(_ context.Context, username, email string) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Account
	for _, row := range r.rows {
		if row.Username == username || row.Email == email {
			result = append(result, *cloneAccount(row))
		}
	}
	return result, nil
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Username == account.Username {
			return &DuplicateError{Field: "username"}
		}
		if row.Email == account.Email {
			return &DuplicateError{Field: "correo"}
		}
	}

	r.nextID++
	account.ID = r.nextID
	account.UserType = r.userType
	account.Active = true
	account.CreatedAt = r.now()
	if r.userType == domain.UserTypeStaff {
		if account.Role == nil {
			role := domain.DefaultStaffRole
			account.Role = &role
		}
	} else {
		account.Role = nil
	}
	r.rows[account.ID] = cloneAccount(account)
	return nil
}

func (r *MemoryAccountRepository) TouchLastLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	now := r.now()
	row.LastLoginAt = &now
	return nil
}

func (r *MemoryAccountRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

// SetActive toggles the active flag of a stored account.
func (r *MemoryAccountRepository) SetActive(id int64, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if ok {
		row.Active = active
	}
	return ok
}

func cloneAccount(src *domain.Account) *domain.Account {
	dst := *src
	if src.Phone != nil {
		phone := *src.Phone
		dst.Phone = &phone
	}
	if src.Role != nil {
		role := *src.Role
		dst.Role = &role
	}
	if src.LastLoginAt != nil {
		at := *src.LastLoginAt
		dst.LastLoginAt = &at
	}
	return &dst
}
