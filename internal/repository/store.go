package repository

import (
	"context"
	"fmt"

	"notes-app/internal/config"

	"github.com/go-kivik/kivik/v4"
)

type Store struct {
	Users    UserRepository
	Notes    NoteRepository
	Sessions SessionRepository

	client *kivik.Client
}

// Open builds the repositories for the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverCouchDB:
		client, err := Connect(ctx, cfg.CouchURL())
		if err != nil {
			return nil, err
		}
		if err := EnsureSchema(ctx, client, cfg.Name); err != nil {
			client.Close()
			return nil, err
		}
		return &Store{
			Users:    NewUserRepository(client, cfg.Name),
			Notes:    NewNoteRepository(client, cfg.Name),
			Sessions: NewSessionRepository(client, cfg.Name),
			client:   client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Ping reports whether the backing database answers.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	up, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping CouchDB: %w", err)
	}
	if !up {
		return fmt.Errorf("CouchDB is not ready")
	}
	return nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
