package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"notes-app/internal/domain"
	"notes-app/internal/service"
	"notes-app/internal/websession"
)

const (
	LoginPath        = "/login"
	loginRequiredMsg = "Please log in first."
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// AuthedHandlerFunc is a handler that only runs with a resolved session.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext)

// SessionGuard turns the session cookie into an AuthContext or sends the
// browser to the login page.
type SessionGuard struct {
	sessions SessionResolver
	cookies  *websession.Store
	onError  func(w http.ResponseWriter, r *http.Request, err error)
	log      *slog.Logger
}

// NewSessionGuard takes onError to render store failures the same way the
// handlers do.
func NewSessionGuard(sessions SessionResolver, cookies *websession.Store, onError func(http.ResponseWriter, *http.Request, error), log *slog.Logger) *SessionGuard {
	return &SessionGuard{
		sessions: sessions,
		cookies:  cookies,
		onError:  onError,
		log:      log,
	}
}

func (g *SessionGuard) Require(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := g.cookies.Token(r)

		session, err := g.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrNoSession) {
				g.reject(w, r)
				return
			}
			g.onError(w, r, err)
			return
		}

		if session.Touched {
			if err := g.cookies.Refresh(w, r); err != nil {
				g.log.WarnContext(r.Context(), "failed to refresh session cookie", "error", err)
			}
		}

		next(w, r, &domain.AuthContext{
			UserID: session.UserID,
			Token:  token,
		})
	}
}

// reject drops a token that no longer resolves so pages stop treating the
// browser as logged in.
func (g *SessionGuard) reject(w http.ResponseWriter, r *http.Request) {
	if g.cookies.Token(r) != "" {
		if err := g.cookies.End(w, r); err != nil {
			g.log.WarnContext(r.Context(), "failed to clear stale session cookie", "error", err)
		}
	}
	if err := g.cookies.Flash(w, r, websession.Error, loginRequiredMsg); err != nil {
		g.log.WarnContext(r.Context(), "failed to set flash", "error", err)
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
