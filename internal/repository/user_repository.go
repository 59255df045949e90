package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"notes-app/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const (
	userPrefix     = "user:"
	usernamePrefix = "username:"
	emailPrefix    = "email:"
)

type userDoc struct {
	ID           string    `json:"_id"`
	Rev          string    `json:"_rev,omitempty"`
	DocType      string    `json:"doc_type"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// claimDoc reserves a unique username or email. CouchDB rejects a second Put
// of the same _id without a revision, which makes the claim atomic.
type claimDoc struct {
	ID      string `json:"_id"`
	Rev     string `json:"_rev,omitempty"`
	DocType string `json:"doc_type"`
	UserID  string `json:"user_id"`
}

type userRepository struct {
	db *kivik.DB
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		db: client.DB(dbName),
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	usernameRev, err := r.claim(ctx, usernamePrefix+user.Username, user.ID)
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to claim username: %w", err)
	}

	emailRev, err := r.claim(ctx, emailPrefix+normalizeEmail(user.Email), user.ID)
	if err != nil {
		r.release(ctx, usernamePrefix+user.Username, usernameRev)
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to claim email: %w", err)
	}

	doc := userDoc{
		ID:           userPrefix + user.ID,
		DocType:      "user",
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		r.release(ctx, usernamePrefix+user.Username, usernameRev)
		r.release(ctx, emailPrefix+normalizeEmail(user.Email), emailRev)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var doc userDoc
	if err := r.db.Get(ctx, userPrefix+id).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findByClaim(ctx, usernamePrefix+username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByClaim(ctx, emailPrefix+normalizeEmail(email))
}

func (r *userRepository) findByClaim(ctx context.Context, claimID string) (*domain.User, error) {
	var claim claimDoc
	if err := r.db.Get(ctx, claimID).ScanDoc(&claim); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return r.FindByID(ctx, claim.UserID)
}

func (r *userRepository) claim(ctx context.Context, id, userID string) (string, error) {
	return r.db.Put(ctx, id, claimDoc{
		ID:      id,
		DocType: "claim",
		UserID:  userID,
	})
}

// release undoes a claim after a later step of Create failed. A leftover claim
// only blocks the name, so the error is dropped.
func (r *userRepository) release(ctx context.Context, id, rev string) {
	_, _ = r.db.Delete(ctx, id, rev)
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           strings.TrimPrefix(d.ID, userPrefix),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
