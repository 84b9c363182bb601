package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей.
const (
	RoleAdmin   = "Admin"
	RoleStudent = "Student"
)

// User представляет зарегистрированного пользователя библиотеки.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Principal — аутентифицированный пользователь текущего запроса.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// IsAdmin сообщает, обладает ли пользователь запроса правами администратора.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// DummyUser используется для приёма данных нового пользователя.
// Role учитывается только при создании пользователя администратором.
type DummyUser struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=Admin Student"`
}

// DummyLogin — данные для входа.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult — выданный токен и данные вошедшего пользователя.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
