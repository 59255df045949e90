package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"notes-app/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const sessionPrefix = "session:"

type sessionDoc struct {
	ID            string    `json:"_id"`
	Rev           string    `json:"_rev,omitempty"`
	DocType       string    `json:"doc_type"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`
}

type sessionRepository struct {
	db *kivik.DB
}

func NewSessionRepository(client *kivik.Client, dbName string) SessionRepository {
	return &sessionRepository{
		db: client.DB(dbName),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		ID:            sessionPrefix + session.TokenHash,
		DocType:       "session",
		UserID:        session.UserID,
		CreatedAt:     session.CreatedAt,
		ExpiresAt:     session.ExpiresAt,
		LastTouchedAt: session.LastTouchedAt,
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	doc, err := r.get(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		TokenHash:     tokenHash,
		UserID:        doc.UserID,
		CreatedAt:     doc.CreatedAt,
		ExpiresAt:     doc.ExpiresAt,
		LastTouchedAt: doc.LastTouchedAt,
	}, nil
}

func (r *sessionRepository) Touch(ctx context.Context, tokenHash string, touchedAt, expiresAt time.Time) error {
	doc, err := r.get(ctx, tokenHash)
	if err != nil {
		return err
	}

	doc.LastTouchedAt = touchedAt
	doc.ExpiresAt = expiresAt

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrConflict
		}
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, tokenHash string) error {
	doc, err := r.get(ctx, tokenHash)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *sessionRepository) get(ctx context.Context, tokenHash string) (*sessionDoc, error) {
	var doc sessionDoc
	if err := r.db.Get(ctx, sessionPrefix+tokenHash).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &doc, nil
}
