package model

import "time"

// Role is the closed set of account roles.  Authorization points
// switch over this enumeration exhaustively; there is no free-form
// role string anywhere in the service.
type Role string

const (
	RoleCustomer Role = "CUSTOMER" // books tickets for themselves
	RoleManager  Role = "MANAGER"  // manages theaters and showtimes
	RoleAdmin    Role = "ADMIN"    // full access, including any booking
)

// Valid reports whether r names a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether the role may act on resources it does not
// own, such as cancelling another user's booking.
func (r Role) Staff() bool {
	switch r {
	case RoleManager, RoleAdmin:
		return true
	case RoleCustomer:
		return false
	}
	return false
}

// User represents an application user record as stored in the
// `users` table.  Handlers define separate response types with JSON
// tags; this struct is used by the repository layer only.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (CUSTOMER, MANAGER, ADMIN).
//  IsStudent    – whether the user registered as a student (discount eligibility).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsStudent    bool      // users.is_student
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
