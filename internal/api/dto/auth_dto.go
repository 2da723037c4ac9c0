package dto

import (
	"time"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// RegisterRequest payload for both registration endpoints. A role field, if
// sent, is not read.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Correo   string `json:"correo"`
	Telefono string `json:"telefono"`
}

// LoginUser is the public projection returned by login.
type LoginUser struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Telefono *string           `json:"telefono"`
	UserType domain.UserType   `json:"userType"`
	Rol      *domain.StaffRole `json:"rol,omitempty"`
}

// LoginResponse body for a successful login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	User      LoginUser `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisteredUser is the public identity returned after registration.
type RegisteredUser struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Nombre   string            `json:"nombre"`
	Correo   string            `json:"correo"`
	Telefono *string           `json:"telefono"`
	UserType domain.UserType   `json:"userType"`
	Rol      *domain.StaffRole `json:"rol,omitempty"`
}

// RegisterResponse body for a successful registration.
type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

// ProfileUser is the account view returned by GET /api/auth/profile.
type ProfileUser struct {
	ID               int64             `json:"id"`
	Username         string            `json:"username"`
	Nombre           string            `json:"nombre"`
	Correo           string            `json:"correo"`
	Telefono         *string           `json:"telefono"`
	Rol              *domain.StaffRole `json:"rol,omitempty"`
	FechaRegistro    *time.Time        `json:"fecha_registro,omitempty"`
	FechaCreacion    *time.Time        `json:"fecha_creacion,omitempty"`
	FechaUltimoLogin *time.Time        `json:"fecha_ultimo_login"`
	UserType         domain.UserType   `json:"userType"`
}

// NewLoginUser projects an account for the login response.
func NewLoginUser(account *domain.Account) LoginUser {
	user := LoginUser{
		ID:       account.ID,
		Username: account.Username,
		Name:     account.Name,
		Email:    account.Email,
		Telefono: account.Phone,
		UserType: account.UserType,
	}
	if account.IsStaff() {
		user.Rol = account.Role
	}
	return user
}

// NewRegisteredUser projects an account for the registration response.
func NewRegisteredUser(account *domain.Account) RegisteredUser {
	user := RegisteredUser{
		ID:       account.ID,
		Username: account.Username,
		Nombre:   account.Name,
		Correo:   account.Email,
		Telefono: account.Phone,
		UserType: account.UserType,
	}
	if account.IsStaff() {
		user.Rol = account.Role
	}
	return user
}

// NewProfileUser projects an account for the profile response.
func NewProfileUser(account *domain.Account) ProfileUser {
	created := account.CreatedAt
	user := ProfileUser{
		ID:               account.ID,
		Username:         account.Username,
		Nombre:           account.Name,
		Correo:           account.Email,
		Telefono:         account.Phone,
		FechaUltimoLogin: account.LastLoginAt,
		UserType:         account.UserType,
	}
	if account.IsStaff() {
		user.Rol = account.Role
		user.FechaCreacion = &created
	} else {
		user.FechaRegistro = &created
	}
	return user
}
