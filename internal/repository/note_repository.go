package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"notes-app/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const notePrefix = "note:"

// findPageSize is the Mango page size; the server default is 25.
const findPageSize = 200

type noteDoc struct {
	ID        string    `json:"_id"`
	Rev       string    `json:"_rev,omitempty"`
	DocType   string    `json:"doc_type"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type noteRepository struct {
	db       *kivik.DB
	pageSize int
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		db:       client.DB(dbName),
		pageSize: findPageSize,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	doc := noteDoc{
		ID:        notePrefix + note.ID,
		DocType:   "note",
		OwnerID:   note.OwnerID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByOwner follows Mango bookmarks until a short page, so no owner is
// ever cut off at a fixed limit.
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	var (
		notes    []*domain.Note
		bookmark string
	)
	for {
		query := map[string]interface{}{
			"selector": map[string]interface{}{
				"doc_type": "note",
				"owner_id": ownerID,
			},
			"limit": r.pageSize,
		}
		if bookmark != "" {
			query["bookmark"] = bookmark
		}

		page, next, err := r.findPage(ctx, query)
		if err != nil {
			return nil, err
		}
		notes = append(notes, page...)

		if len(page) < r.pageSize || next == "" || next == bookmark {
			break
		}
		bookmark = next
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	return notes, nil
}

func (r *noteRepository) findPage(ctx context.Context, query map[string]interface{}) ([]*domain.Note, string, error) {
	rows := r.db.Find(ctx, query)
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var doc noteDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, "", fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, doc.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to list notes: %w", err)
	}

	var bookmark string
	if meta, err := rows.Metadata(); err == nil && meta != nil {
		bookmark = meta.Bookmark
	}
	return notes, bookmark, nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	existing, err := r.get(ctx, note.ID)
	if err != nil {
		return err
	}

	existing.Title = note.Title
	existing.Content = note.Content

	if _, err := r.db.Put(ctx, existing.ID, existing); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrConflict
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.db.Delete(ctx, existing.ID, existing.Rev); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrConflict
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func (r *noteRepository) get(ctx context.Context, id string) (*noteDoc, error) {
	var doc noteDoc
	if err := r.db.Get(ctx, notePrefix+id).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return &doc, nil
}

func (d *noteDoc) toDomain() *domain.Note {
	return &domain.Note{
		ID:        strings.TrimPrefix(d.ID, notePrefix),
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}
