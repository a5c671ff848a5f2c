package models

// Role is a dashboard user role
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAgent   Role = "agent"
	RoleManager Role = "manager"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleManager:
		return true
	}
	return false
}

// User is the authenticated dashboard user
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role"`
}

// AuthResult is returned by login and register
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ProfileUpdate holds the editable fields of the current user
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}
