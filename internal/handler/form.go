package handler

import (
	"errors"
	"net/http"
	"strings"

	"notes-app/internal/domain"
	"notes-app/internal/service"
)

// MaxFormBytes bounds every request body.
const MaxFormBytes = 1 << 20

// noteFields reads only title and content from the request body. Both the
// nested note[title] form names and plain title are accepted.
func noteFields(r *http.Request) (domain.NoteFields, error) {
	if err := parseForm(r); err != nil {
		return domain.NoteFields{}, err
	}

	return domain.NoteFields{
		Title:   formField(r, "note[title]", "title"),
		Content: formField(r, "note[content]", "content"),
	}, nil
}

func noteForm(fields domain.NoteFields) map[string]string {
	form := make(map[string]string, 2)
	if fields.Title != nil {
		form["title"] = *fields.Title
	}
	if fields.Content != nil {
		form["content"] = *fields.Content
	}
	return form
}

// parseForm is a no-op once the body limit middleware has parsed the form.
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return formParseError(err)
	}
	return nil
}

// formParseError keeps an oversized body distinguishable from a malformed one.
func formParseError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &service.FormError{Err: service.ErrValidation, Message: "Malformed form submission."}
}

func formField(r *http.Request, names ...string) *string {
	for _, name := range names {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
	}
	return nil
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}
