package service

import (
	"context"
	"errors"
	"testing"

	"notes-app/internal/domain"
	"notes-app/internal/repository"
	"notes-app/pkg/hash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingUserRepo struct {
	repository.UserRepository
	created int
}

func (c *countingUserRepo) Create(ctx context.Context, user *domain.User) error {
	if err := c.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	c.created++
	return nil
}

type failingUserRepo struct {
	repository.UserRepository
}

func (failingUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func newAuthService(t *testing.T, repo repository.UserRepository) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, hash.New(bcrypt.MinCost), 6)
	require.NoError(t, err)
	return svc
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.RegisterRequest
		wantErr error
	}{
		{
			name: "successful registration",
			req:  domain.RegisterRequest{Username: "carol", Email: "carol@x.com", Password: "pw12345"},
		},
		{
			name:    "duplicate username",
			req:     domain.RegisterRequest{Username: "alice", Email: "other@x.com", Password: "pw12345"},
			wantErr: ErrDuplicateIdentity,
		},
		{
			name:    "duplicate email with different case",
			req:     domain.RegisterRequest{Username: "alice2", Email: "ALICE@x.com", Password: "pw12345"},
			wantErr: ErrDuplicateIdentity,
		},
		{
			name:    "password too short",
			req:     domain.RegisterRequest{Username: "dave", Email: "dave@x.com", Password: "pw1"},
			wantErr: ErrInvalidCredentialFormat,
		},
		{
			name:    "empty password",
			req:     domain.RegisterRequest{Username: "dave", Email: "dave@x.com"},
			wantErr: ErrInvalidCredentialFormat,
		},
		{
			name:    "invalid email",
			req:     domain.RegisterRequest{Username: "dave", Email: "not-an-email", Password: "pw12345"},
			wantErr: ErrValidation,
		},
		{
			name:    "username with punctuation",
			req:     domain.RegisterRequest{Username: "dave.smith", Email: "dave@x.com", Password: "pw12345"},
			wantErr: ErrValidation,
		},
		{
			name:    "username too short",
			req:     domain.RegisterRequest{Username: "dv", Email: "dave@x.com", Password: "pw12345"},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &countingUserRepo{UserRepository: repository.NewMemoryUserRepository()}
			svc := newAuthService(t, repo)
			ctx := context.Background()

			_, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "pw12345"})
			require.NoError(t, err)

			user, err := svc.Register(ctx, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.NotEmpty(t, UserMessage(err, ""))
				assert.Equal(t, 1, repo.created, "no new user record on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 2, repo.created)
			assert.NotEqual(t, tt.req.Password, user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.req.Password)))
		})
	}
}

func TestAuthService_Verify(t *testing.T) {
	svc := newAuthService(t, repository.NewMemoryUserRepository())
	ctx := context.Background()

	registered, err := svc.Register(ctx, &domain.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "pw12345"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
	}{
		{name: "by username", identifier: "alice", password: "pw12345"},
		{name: "by email", identifier: "alice@x.com", password: "pw12345"},
		{name: "wrong password", identifier: "alice", password: "pw123456", wantErr: ErrInvalidCredential},
		{name: "unknown user", identifier: "mallory", password: "pw12345", wantErr: ErrUnknownIdentity},
		{name: "unknown email", identifier: "mallory@x.com", password: "pw12345", wantErr: ErrUnknownIdentity},
		{name: "missing password", identifier: "alice", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Verify(ctx, &domain.LoginRequest{Identifier: tt.identifier, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
		})
	}
}

func TestAuthService_VerifyStoreFailure(t *testing.T) {
	svc := newAuthService(t, failingUserRepo{})

	_, err := svc.Verify(context.Background(), &domain.LoginRequest{Identifier: "alice", Password: "pw12345"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownIdentity)
}
