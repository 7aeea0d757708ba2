package model

import "time"

// Roles stored in users.role.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents an application user record as stored in the
// `users` table.  PasswordHash is a bcrypt hash and never leaves the
// repository/service layers.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email (unique, lower-case)
    PasswordHash string    // users.password
    Role         string    // users.role (user | admin)
    CreatedAt    time.Time // users.created_at
}

// PublicUser is the profile returned to clients after login.
type PublicUser struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
    Role string `json:"role"`
}

// Public strips credentials from the user record.
func (u User) Public() PublicUser {
    return PublicUser{ID: u.ID, Name: u.Name, Role: u.Role}
}
