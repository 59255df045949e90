// Package websession keeps the browser side of a login: a signed, HTTP-only
// cookie holding the opaque session token and one-shot flash messages.
package websession

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

const tokenKey = "token"

// Messages are the flashes consumed for the current page.
type Messages struct {
	Success []string
	Error   []string
}

func (m Messages) Empty() bool {
	return len(m.Success) == 0 && len(m.Error) == 0
}

type Store struct {
	cookies *sessions.CookieStore
	name    string
}

func New(secret, cookieName string, maxAge time.Duration, secure bool) *Store {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(int(maxAge.Seconds()))

	return &Store{
		cookies: cookies,
		name:    cookieName,
	}
}

// get never fails: a cookie that does not verify is replaced by a fresh one.
func (s *Store) get(r *http.Request) *sessions.Session {
	sess, _ := s.cookies.Get(r, s.name)
	return sess
}

func (s *Store) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to write session cookie: %w", err)
	}
	return nil
}

// Token returns the session token carried by the request, or "".
func (s *Store) Token(r *http.Request) string {
	token, _ := s.get(r).Values[tokenKey].(string)
	return token
}

func (s *Store) Start(w http.ResponseWriter, r *http.Request, token string) error {
	sess := s.get(r)
	sess.Values[tokenKey] = token
	return s.save(w, r, sess)
}

// Refresh re-issues the cookie so its max age follows a touched session.
func (s *Store) Refresh(w http.ResponseWriter, r *http.Request) error {
	return s.save(w, r, s.get(r))
}

// End drops the token but keeps the cookie for pending flashes.
func (s *Store) End(w http.ResponseWriter, r *http.Request) error {
	sess := s.get(r)
	delete(sess.Values, tokenKey)
	return s.save(w, r, sess)
}

func (s *Store) Flash(w http.ResponseWriter, r *http.Request, kind Kind, msg string) error {
	sess := s.get(r)
	sess.AddFlash(msg, string(kind))
	return s.save(w, r, sess)
}

// Messages consumes pending flashes.
func (s *Store) Messages(w http.ResponseWriter, r *http.Request) (Messages, error) {
	sess := s.get(r)
	msgs := Messages{
		Success: toStrings(sess.Flashes(string(Success))),
		Error:   toStrings(sess.Flashes(string(Error))),
	}
	if msgs.Empty() {
		return msgs, nil
	}
	return msgs, s.save(w, r, sess)
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
