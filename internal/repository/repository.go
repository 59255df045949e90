package repository

import (
	"context"
	"time"

	"notes-app/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// ListByOwner returns the owner's notes in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	Touch(ctx context.Context, tokenHash string, touchedAt, expiresAt time.Time) error
	// Delete is a no-op when the session is already gone.
	Delete(ctx context.Context, tokenHash string) error
}
