package domain

// UserType differentiates customer vs staff accounts and tokens.
type UserType string

const (
	UserTypeCustomer UserType = "cliente"
	UserTypeStaff    UserType = "trabajador"
)

// Valid reports whether t is one of the known user classes.
func (t UserType) Valid() bool {
	return t == UserTypeCustomer || t == UserTypeStaff
}

// StaffRole enumerates staff privilege levels.
type StaffRole string

const (
	StaffRoleAdmin    StaffRole = "admin"
	StaffRoleManager  StaffRole = "gerente"
	StaffRoleEmployee StaffRole = "empleado"
)

// DefaultStaffRole is assigned on self-registration.
const DefaultStaffRole = StaffRoleEmployee

// Valid reports whether r belongs to the closed role set.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleManager, StaffRoleEmployee:
		return true
	}
	return false
}
