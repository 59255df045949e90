package service

import "notes-app/internal/domain"

// AssertOwner returns ErrAccessDenied unless userID owns note.
func AssertOwner(note *domain.Note, userID string) error {
	if note == nil || userID == "" || note.OwnerID != userID {
		return ErrAccessDenied
	}
	return nil
}
