package domain

import "time"

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteFields is the allow-list of client-writable note fields. A nil field is
// left untouched on update.
type NoteFields struct {
	Title   *string `validate:"omitempty,max=200"`
	Content *string `validate:"omitempty,max=100000"`
}

func (f NoteFields) Apply(note *Note) {
	if f.Title != nil {
		note.Title = *f.Title
	}
	if f.Content != nil {
		note.Content = *f.Content
	}
}
