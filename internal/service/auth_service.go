package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes-app/internal/domain"
	"notes-app/internal/repository"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// AuthService owns user identities and their password hashes.
type AuthService struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	minLength int

	// dummyHash is compared against when the identity is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, minPasswordLength int) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		minLength: minPasswordLength,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if len(req.Password) < s.minLength {
		return nil, &FormError{
			Err:     ErrInvalidCredentialFormat,
			Message: fmt.Sprintf("Password must be at least %d characters.", s.minLength),
		}
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, &FormError{Err: ErrDuplicateIdentity, Message: "A user with the given username is already registered."}
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, &FormError{Err: ErrDuplicateIdentity, Message: "A user with the given email is already registered."}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Verify checks a username or email against its stored password hash.
func (s *AuthService) Verify(ctx context.Context, req *domain.LoginRequest) (*domain.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	identifier := strings.TrimSpace(req.Identifier)

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.hasher.Compare(s.dummyHash, req.Password)
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredential
	}

	return user, nil
}
