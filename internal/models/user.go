package models

type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// RoleFilter is the client-side view filter over a loaded user list.
type RoleFilter string

const (
	FilterAll   RoleFilter = "ALL"
	FilterUser  RoleFilter = "USER"
	FilterAdmin RoleFilter = "ADMIN"
)

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == string(RoleAdmin)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the flat payload returned by /auth/login and
// /auth/register: the user fields with the token alongside them.
type AuthResponse struct {
	Token string `json:"token"`
	User
}
