package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string `validate:"required,min=3,max=30,alphanum"`
	Email    string `validate:"required,email"`
	Password string
}

// LoginRequest carries either a username or an email in Identifier.
type LoginRequest struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}
