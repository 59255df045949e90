// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"notes-app/internal/domain"
	"notes-app/internal/websession"
)

//go:embed templates
var files embed.FS

const (
	NotesIndex   = "notes/index"
	NotesNew     = "notes/new"
	NotesShow    = "notes/show"
	NotesEdit    = "notes/edit"
	AuthRegister = "auth/register"
	AuthLogin    = "auth/login"
	ErrorPage    = "error"
)

var pages = []string{NotesIndex, NotesNew, NotesShow, NotesEdit, AuthRegister, AuthLogin, ErrorPage}

// Page is the data every template receives.
type Page struct {
	Title    string
	Flash    websession.Messages
	LoggedIn bool

	Notes []*domain.Note
	Note  *domain.Note
	// CanEdit hides edit/delete controls from non-owners on the show page.
	CanEdit bool

	// Form echoes submitted values back after a failed submission.
	Form  map[string]string
	Error string

	Status  int
	Message string
}

type Renderer struct {
	templates map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(n *domain.Note) string { return n.CreatedAt.Format("Jan 2, 2006 15:04") },
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
