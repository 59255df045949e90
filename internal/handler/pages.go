package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"notes-app/internal/service"
	"notes-app/internal/view"
	"notes-app/internal/websession"
	"notes-app/pkg/response"
)

const (
	msgNotFound      = "Note not found"
	msgAccessDenied  = "You don't have permission to do that."
	msgPageNotFound  = "Page Not Found!"
	msgInternalError = "Something went wrong!"
	msgTooLarge      = "That submission is too large."
	msgEditConflict  = "This note was changed by another request. Reload it and try again."
)

// Pages renders templates and the shared error page for every handler.
type Pages struct {
	view    *view.Renderer
	cookies *websession.Store
	log     *slog.Logger
}

func NewPages(renderer *view.Renderer, cookies *websession.Store, log *slog.Logger) *Pages {
	return &Pages{
		view:    renderer,
		cookies: cookies,
		log:     log,
	}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) {
	flash, err := p.cookies.Messages(w, r)
	if err != nil {
		p.log.WarnContext(r.Context(), "failed to read flash messages", "error", err)
	}
	page.Flash = flash

	if err := p.view.Render(w, status, name, page); err != nil {
		p.log.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
	}
}

func (p *Pages) flash(w http.ResponseWriter, r *http.Request, kind websession.Kind, msg string) {
	if err := p.cookies.Flash(w, r, kind, msg); err != nil {
		p.log.WarnContext(r.Context(), "failed to set flash", "error", err)
	}
}

// Error renders err as the error page. Only known domain errors expose their
// message; everything else becomes a generic 500.
func (p *Pages) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		p.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	p.render(w, r, status, view.ErrorPage, &view.Page{
		Title:    http.StatusText(status),
		LoggedIn: p.cookies.Token(r) != "",
		Status:   status,
		Message:  msg,
	})
}

// FormError renders a failure to read the submitted form.
func (p *Pages) FormError(w http.ResponseWriter, r *http.Request, err error) {
	p.Error(w, r, formParseError(err))
}

func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, view.ErrorPage, &view.Page{
		Title:    http.StatusText(http.StatusNotFound),
		LoggedIn: p.cookies.Token(r) != "",
		Status:   http.StatusNotFound,
		Message:  msgPageNotFound,
	})
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			response.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "notes-app",
		})
	}
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, service.ErrNoteNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden, msgAccessDenied
	case errors.Is(err, service.ErrEditConflict):
		return http.StatusConflict, msgEditConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, service.UserMessage(err, "Invalid submission.")
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
