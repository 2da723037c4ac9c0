package domain

import "time"

// Account is a customer or staff row. Role is nil for customers.
type Account struct {
	ID           int64      `json:"id"`
	UserType     UserType   `json:"userType"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"nombre"`
	Email        string     `json:"correo"`
	Phone        *string    `json:"telefono"`
	Role         *StaffRole `json:"rol,omitempty"`
	Active       bool       `json:"activo"`
	LastLoginAt  *time.Time `json:"fecha_ultimo_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsStaff reports whether the account lives in the staff table.
func (a *Account) IsStaff() bool {
	return a.UserType == UserTypeStaff
}
