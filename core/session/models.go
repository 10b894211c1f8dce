package session

import (
	"github.com/uptpik/pikweb/core"
)

// Roles as the backend represents them.
const (
	RoleAdmin = "ADMIN"
	RoleDosen = "DOSEN"
	RoleUser  = "USER"
)

var AllRoles = []string{RoleAdmin, RoleDosen, RoleUser}

// User is the authenticated identity as returned by the backend.
type User struct {
	ID    string `json:"id"`
	Nama  string `json:"nama"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
func (u *User) IsDosen() bool { return u.Role == RoleDosen }

// State is the session snapshot observed by the view layer.
// IsAuthenticated implies User != nil and Token != "".
type State struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsInitialized   bool
	IsLoading       bool
	Err             string
}

// AuthPayload is what the backend returns on successful login/registration.
type AuthPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

// Registration contains information needed to register a new account.
type Registration struct {
	Nama            string `json:"nama" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *Registration) Validate() error {
	r.Nama = core.CleanString(r.Nama)
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}
