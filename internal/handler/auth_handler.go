package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"notes-app/internal/domain"
	"notes-app/internal/middleware"
	"notes-app/internal/service"
	"notes-app/internal/view"
	"notes-app/internal/websession"
	"notes-app/pkg/response"
)

const (
	msgLoginFailed  = "Invalid username or password."
	msgLogoutFailed = "Logout failed. Try again."
)

type Authenticator interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Verify(ctx context.Context, req *domain.LoginRequest) (*domain.User, error)
}

type SessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, token string) error
}

type AuthHandler struct {
	*Pages
	auth     Authenticator
	sessions SessionManager
}

func NewAuthHandler(pages *Pages, auth Authenticator, sessions SessionManager) *AuthHandler {
	return &AuthHandler{
		Pages:    pages,
		auth:     auth,
		sessions: sessions,
	}
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.AuthRegister, &view.Page{
		Title:    "Register",
		LoggedIn: h.cookies.Token(r) != "",
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.Error(w, r, err)
		return
	}

	req := &domain.RegisterRequest{
		Username: formValue(r, "username"),
		Email:    formValue(r, "email"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrDuplicateIdentity):
			status = http.StatusConflict
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCredentialFormat):
		default:
			h.Error(w, r, err)
			return
		}

		h.render(w, r, status, view.AuthRegister, &view.Page{
			Title: "Register",
			Error: service.UserMessage(err, "Registration failed."),
			Form: map[string]string{
				"username": req.Username,
				"email":    req.Email,
			},
		})
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		h.Error(w, r, err)
		return
	}

	h.flash(w, r, websession.Success, "Account created successfully!")
	response.SeeOther(w, r, notesPath)
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.AuthLogin, &view.Page{
		Title:    "Log in",
		LoggedIn: h.cookies.Token(r) != "",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.Error(w, r, err)
		return
	}

	identifier := formValue(r, "username")
	if identifier == "" {
		identifier = formValue(r, "email")
	}

	user, err := h.auth.Verify(r.Context(), &domain.LoginRequest{
		Identifier: identifier,
		Password:   r.PostFormValue("password"),
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownIdentity) ||
			errors.Is(err, service.ErrInvalidCredential) ||
			errors.Is(err, service.ErrValidation) {
			h.log.InfoContext(r.Context(), "login rejected", "identifier", identifier)
			h.flash(w, r, websession.Error, msgLoginFailed)
			response.SeeOther(w, r, middleware.LoginPath)
			return
		}
		h.Error(w, r, err)
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		h.Error(w, r, err)
		return
	}

	h.flash(w, r, websession.Success, fmt.Sprintf("Welcome back, %s!", user.Username))
	response.SeeOther(w, r, notesPath)
}

// Logout requires an authenticated session; the guard redirects anonymous callers.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	if err := h.sessions.Destroy(r.Context(), auth.Token); err != nil {
		h.log.ErrorContext(r.Context(), "failed to destroy session", "user_id", auth.UserID, "error", err)
		h.flash(w, r, websession.Error, msgLogoutFailed)
		h.Error(w, r, err)
		return
	}

	if err := h.cookies.End(w, r); err != nil {
		h.log.WarnContext(r.Context(), "failed to clear session cookie", "error", err)
	}

	h.flash(w, r, websession.Success, "Logged out successfully.")
	response.SeeOther(w, r, middleware.LoginPath)
}

// startSession replaces any session the browser already carries.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) error {
	if old := h.cookies.Token(r); old != "" {
		if err := h.sessions.Destroy(r.Context(), old); err != nil {
			h.log.WarnContext(r.Context(), "failed to destroy previous session", "error", err)
		}
	}

	token, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return err
	}

	return h.cookies.Start(w, r, token)
}
