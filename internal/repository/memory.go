package repository

import (
	"context"
	"sync"
	"time"

	"notes-app/internal/domain"
)

// NewMemoryStore returns repositories that keep everything in process memory.
// Returned entities are copies, so callers cannot mutate stored state.
func NewMemoryStore() *Store {
	return &Store{
		Users:    NewMemoryUserRepository(),
		Notes:    NewMemoryNoteRepository(),
		Sessions: NewMemorySessionRepository(),
	}
}

type memoryUserRepository struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users:      make(map[string]domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (m *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, ok := m.byUsername[user.Username]; ok {
		return ErrUsernameTaken
	}
	if _, ok := m.byEmail[email]; ok {
		return ErrEmailTaken
	}

	m.users[user.ID] = *user
	m.byUsername[user.Username] = user.ID
	m.byEmail[email] = user.ID
	return nil
}

func (m *memoryUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.find(id)
}

func (m *memoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.find(m.byUsername[username])
}

func (m *memoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.find(m.byEmail[normalizeEmail(email)])
}

func (m *memoryUserRepository) find(id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type memoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
	order []string
}

func NewMemoryNoteRepository() NoteRepository {
	return &memoryNoteRepository{
		notes: make(map[string]domain.Note),
	}
}

func (m *memoryNoteRepository) Create(_ context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[note.ID]; ok {
		return ErrConflict
	}
	m.notes[note.ID] = *note
	m.order = append(m.order, note.ID)
	return nil
}

func (m *memoryNoteRepository) FindByID(_ context.Context, id string) (*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	note, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &note, nil
}

func (m *memoryNoteRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var notes []*domain.Note
	for _, id := range m.order {
		note, ok := m.notes[id]
		if !ok || note.OwnerID != ownerID {
			continue
		}
		notes = append(notes, &note)
	}
	return notes, nil
}

func (m *memoryNoteRepository) Update(_ context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.notes[note.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	m.notes[note.ID] = existing
	return nil
}

func (m *memoryNoteRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]domain.Session),
	}
}

func (m *memorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.TokenHash]; ok {
		return ErrConflict
	}
	m.sessions[session.TokenHash] = *session
	return nil
}

func (m *memorySessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (m *memorySessionRepository) Touch(_ context.Context, tokenHash string, touchedAt, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[tokenHash]
	if !ok {
		return ErrNotFound
	}
	session.LastTouchedAt = touchedAt
	session.ExpiresAt = expiresAt
	m.sessions[tokenHash] = session
	return nil
}

func (m *memorySessionRepository) Delete(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, tokenHash)
	return nil
}
