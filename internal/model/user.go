package model

// Role gates access to user management.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "normal"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleNormal
}

// Label returns the display label for the role.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Administrador"
	}
	return "Usuario Normal"
}

// User is one value of the global users directory, keyed by username.
type User struct {
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}
