package router

import (
	"log/slog"
	"net/http"

	"notes-app/internal/handler"
	"notes-app/internal/middleware"
	"notes-app/pkg/response"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Deps struct {
	Pages  *handler.Pages
	Notes  *handler.NoteHandler
	Auth   *handler.AuthHandler
	Guard  *middleware.SessionGuard
	DB     handler.Pinger
	Logger *slog.Logger
}

// New builds the route table. HTML forms tunnel PUT and DELETE through
// POST with _method, so the override wraps the router before matching and
// the body limit wraps the override, which reads the form.
func New(d Deps) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(d.Logger))
	r.Use(middleware.RecoverMiddleware(d.Logger, d.Pages.Error))

	r.HandleFunc("/health", handler.Health(d.DB, d.Logger)).Methods(http.MethodGet)
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.SeeOther(w, r, "/notes")
	}).Methods(http.MethodGet)

	r.HandleFunc("/register", d.Auth.RegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", d.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", d.Auth.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", d.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", d.Guard.Require(d.Auth.Logout)).Methods(http.MethodGet)

	notes := r.PathPrefix("/notes").Subrouter()
	notes.HandleFunc("", d.Guard.Require(d.Notes.List)).Methods(http.MethodGet)
	notes.HandleFunc("", d.Guard.Require(d.Notes.Create)).Methods(http.MethodPost)
	notes.HandleFunc("/new", d.Guard.Require(d.Notes.New)).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", d.Guard.Require(d.Notes.Show)).Methods(http.MethodGet)
	notes.HandleFunc("/{id}/edit", d.Guard.Require(d.Notes.Edit)).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", d.Guard.Require(d.Notes.Update)).Methods(http.MethodPut)
	notes.HandleFunc("/{id}", d.Guard.Require(d.Notes.Delete)).Methods(http.MethodDelete)

	notFound := http.HandlerFunc(d.Pages.NotFound)
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	limit := middleware.BodyLimitMiddleware(handler.MaxFormBytes, d.Pages.FormError)
	return limit(handlers.HTTPMethodOverrideHandler(r))
}
