// Package validation holds the input-shape rules for login and registration.
// The functions are pure: they return nil when the input is acceptable and a
// *Error naming the offending field otherwise.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

const (
	MinUsernameLen = 4
	MinPasswordLen = 9
	MinNameLen     = 5
	MinEmailLen    = 9
	MinPhoneLen    = 9

	MaxUsernameLen      = 50
	MaxNameLen          = 100
	MaxEmailLen         = 100
	MaxPhoneLen         = 20
	MaxLoginPasswordLen = 100
	// bcrypt rejects inputs longer than 72 bytes.
	MaxPasswordBytes = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z]+$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9@#$%^&+=!?._-]+$`)
	namePattern     = regexp.MustCompile(`^[a-zA-Z\x{00C0}-\x{00FF}\s]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[0-9\s\-()+]+$`)
)

// Error is the invalid-with-reason outcome of a validation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &Error{Field: field, Message: message}
}

// Login carries the raw login form.
type Login struct {
	Username string
	Password string
	UserType string
}

// Registration carries the raw registration form. Phone is optional.
type Registration struct {
	Username string
	Password string
	Name     string
	Email    string
	Phone    string
}

// ValidateLogin checks a login request before any datastore access.
func ValidateLogin(in Login) error {
	if in.Username == "" || in.Password == "" || in.UserType == "" {
		return invalid("form", "Username, password y userType son requeridos")
	}
	if !domain.UserType(in.UserType).Valid() {
		return invalid("userType", `userType debe ser "cliente" o "trabajador"`)
	}
	if !usernamePattern.MatchString(in.Username) {
		return invalid("username", "Usuario solo puede contener letras")
	}
	if runeLen(in.Username) > MaxUsernameLen || runeLen(in.Password) > MaxLoginPasswordLen {
		return invalid("form", "Datos demasiado largos")
	}
	return nil
}

// ValidateRegistration checks a registration form for either user class.
func ValidateRegistration(in Registration) error {
	if in.Username == "" || in.Password == "" || in.Name == "" || in.Email == "" {
		return invalid("form", "Todos los campos son requeridos")
	}

	if runeLen(in.Username) < MinUsernameLen {
		return invalid("username", fmt.Sprintf("El usuario debe tener al menos %d caracteres", MinUsernameLen))
	}
	if runeLen(in.Password) < MinPasswordLen {
		return invalid("password", fmt.Sprintf("La contraseña debe tener al menos %d caracteres", MinPasswordLen))
	}
	if runeLen(in.Name) < MinNameLen {
		return invalid("nombre", fmt.Sprintf("El nombre debe tener al menos %d caracteres", MinNameLen))
	}
	if runeLen(in.Email) < MinEmailLen {
		return invalid("correo", fmt.Sprintf("El correo debe tener al menos %d caracteres", MinEmailLen))
	}
	if in.Phone != "" && runeLen(in.Phone) < MinPhoneLen {
		return invalid("telefono", fmt.Sprintf("El teléfono debe tener al menos %d caracteres", MinPhoneLen))
	}

	if runeLen(in.Username) > MaxUsernameLen {
		return invalid("username", fmt.Sprintf("El usuario no puede superar %d caracteres", MaxUsernameLen))
	}
	if len(in.Password) > MaxPasswordBytes {
		return invalid("password", fmt.Sprintf("La contraseña no puede superar %d caracteres", MaxPasswordBytes))
	}
	if runeLen(in.Name) > MaxNameLen {
		return invalid("nombre", fmt.Sprintf("El nombre no puede superar %d caracteres", MaxNameLen))
	}
	if runeLen(in.Email) > MaxEmailLen {
		return invalid("correo", fmt.Sprintf("El correo no puede superar %d caracteres", MaxEmailLen))
	}
	if runeLen(in.Phone) > MaxPhoneLen {
		return invalid("telefono", fmt.Sprintf("El teléfono no puede superar %d caracteres", MaxPhoneLen))
	}

	if strings.ContainsFunc(in.Password, isSpace) {
		return invalid("password", "La contraseña no puede contener espacios")
	}
	if !passwordPattern.MatchString(in.Password) {
		return invalid("password", "La contraseña contiene caracteres no permitidos")
	}
	if !namePattern.MatchString(in.Name) {
		return invalid("nombre", "El nombre solo puede contener letras y espacios")
	}
	if !usernamePattern.MatchString(in.Username) {
		return invalid("username", "El usuario solo puede contener letras")
	}
	if !emailPattern.MatchString(in.Email) {
		return invalid("correo", "El formato del correo electrónico no es válido")
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		return invalid("telefono", "El teléfono contiene caracteres no permitidos")
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
