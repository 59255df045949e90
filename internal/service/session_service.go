package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notes-app/internal/domain"
	"notes-app/internal/repository"
)

// SessionService issues and resolves opaque session tokens. Records are keyed
// by sha256(token); the raw token only lives in the client's cookie.
type SessionService struct {
	repo       repository.SessionRepository
	maxAge     time.Duration
	touchAfter time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewSessionService(repo repository.SessionRepository, maxAge, touchAfter time.Duration, log *slog.Logger) *SessionService {
	return &SessionService{
		repo:       repo,
		maxAge:     maxAge,
		touchAfter: touchAfter,
		log:        log,
		now:        time.Now,
	}
}

func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	token, err := generateSecureToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	session := &domain.Session{
		TokenHash:     hashToken(token),
		UserID:        userID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.maxAge),
		LastTouchedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	return token, nil
}

// Resolve returns the live session for token or ErrNoSession. Expiry is
// extended only when touchAfter has passed since the last touch.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	tokenHash := hashToken(token)
	session, err := s.repo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.repo.Delete(ctx, tokenHash); err != nil {
			s.log.WarnContext(ctx, "failed to remove expired session", "error", err)
		}
		return nil, ErrNoSession
	}

	if now.Sub(session.LastTouchedAt) > s.touchAfter {
		expiresAt := now.Add(s.maxAge)
		if err := s.repo.Touch(ctx, tokenHash, now, expiresAt); err != nil {
			s.log.WarnContext(ctx, "failed to touch session", "error", err)
		} else {
			session.LastTouchedAt = now
			session.ExpiresAt = expiresAt
			session.Touched = true
		}
	}

	return session, nil
}

// Destroy removes the session. Unknown tokens are not an error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
