package repository

import "errors"

var (
	ErrNotFound      = errors.New("document not found")
	ErrConflict      = errors.New("document update conflict")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
)
