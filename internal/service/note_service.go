package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-app/internal/domain"
	"notes-app/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo repository.NoteRepository
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{
		repo: repo,
	}
}

// Create stores a note owned by ownerID. The owner always comes from the
// authenticated session, never from fields.
func (s *NoteService) Create(ctx context.Context, ownerID string, fields domain.NoteFields) (*domain.Note, error) {
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	fields.Apply(note)

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

func (s *NoteService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) FindByID(ctx context.Context, noteID string) (*domain.Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, ErrNoteNotFound
	}

	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return note, nil
}

// FindOwned loads a note and checks that userID owns it.
func (s *NoteService) FindOwned(ctx context.Context, noteID, userID string) (*domain.Note, error) {
	note, err := s.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(note, userID); err != nil {
		return nil, err
	}
	return note, nil
}

// Update applies fields to a note the caller already loaded and checked.
func (s *NoteService) Update(ctx context.Context, note *domain.Note, fields domain.NoteFields) (*domain.Note, error) {
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	updated := *note
	fields.Apply(&updated)

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEditConflict
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return &updated, nil
}

// Delete removes a note the caller already loaded and checked. A note that
// vanished in between counts as deleted.
func (s *NoteService) Delete(ctx context.Context, note *domain.Note) error {
	err := s.repo.Delete(ctx, note.ID)
	switch {
	case err == nil, errors.Is(err, repository.ErrNotFound):
		return nil
	case errors.Is(err, repository.ErrConflict):
		return ErrEditConflict
	default:
		return fmt.Errorf("failed to delete note: %w", err)
	}
}
