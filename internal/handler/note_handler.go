package handler

import (
	"errors"
	"net/http"

	"notes-app/internal/domain"
	"notes-app/internal/service"
	"notes-app/internal/view"
	"notes-app/internal/websession"
	"notes-app/pkg/response"

	"github.com/gorilla/mux"
)

const notesPath = "/notes"

type NoteHandler struct {
	*Pages
	service           *service.NoteService
	showRequiresOwner bool
}

func NewNoteHandler(pages *Pages, noteService *service.NoteService, showRequiresOwner bool) *NoteHandler {
	return &NoteHandler{
		Pages:             pages,
		service:           noteService,
		showRequiresOwner: showRequiresOwner,
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	notes, err := h.service.ListByOwner(r.Context(), auth.UserID)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.NotesIndex, &view.Page{
		Title:    "Your notes",
		LoggedIn: true,
		Notes:    notes,
	})
}

func (h *NoteHandler) New(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	h.render(w, r, http.StatusOK, view.NotesNew, &view.Page{
		Title:    "New note",
		LoggedIn: true,
	})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	fields, err := noteFields(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if _, err := h.service.Create(r.Context(), auth.UserID, fields); err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.render(w, r, http.StatusBadRequest, view.NotesNew, &view.Page{
				Title:    "New note",
				LoggedIn: true,
				Error:    service.UserMessage(err, "Invalid note."),
				Form:     noteForm(fields),
			})
			return
		}
		h.Error(w, r, err)
		return
	}

	h.flash(w, r, websession.Success, "Note created.")
	response.SeeOther(w, r, notesPath)
}

// Show lets any logged-in user read a note unless showRequiresOwner is set.
func (h *NoteHandler) Show(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	note, err := h.service.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.Error(w, r, err)
		return
	}

	owner := service.AssertOwner(note, auth.UserID) == nil
	if h.showRequiresOwner && !owner {
		h.Error(w, r, service.ErrAccessDenied)
		return
	}

	h.render(w, r, http.StatusOK, view.NotesShow, &view.Page{
		Title:    note.Title,
		LoggedIn: true,
		Note:     note,
		CanEdit:  owner,
	})
}

func (h *NoteHandler) Edit(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	note, err := h.service.FindOwned(r.Context(), mux.Vars(r)["id"], auth.UserID)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.NotesEdit, &view.Page{
		Title:    "Edit note",
		LoggedIn: true,
		Note:     note,
	})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	note, err := h.service.FindOwned(r.Context(), mux.Vars(r)["id"], auth.UserID)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	fields, err := noteFields(r)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if _, err := h.service.Update(r.Context(), note, fields); err != nil {
		if errors.Is(err, service.ErrValidation) {
			submitted := *note
			fields.Apply(&submitted)
			h.render(w, r, http.StatusBadRequest, view.NotesEdit, &view.Page{
				Title:    "Edit note",
				LoggedIn: true,
				Note:     &submitted,
				Error:    service.UserMessage(err, "Invalid note."),
			})
			return
		}
		h.Error(w, r, err)
		return
	}

	h.flash(w, r, websession.Success, "Note updated.")
	response.SeeOther(w, r, notesPath)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request, auth *domain.AuthContext) {
	note, err := h.service.FindOwned(r.Context(), mux.Vars(r)["id"], auth.UserID)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), note); err != nil {
		h.Error(w, r, err)
		return
	}

	h.flash(w, r, websession.Success, "Note deleted.")
	response.SeeOther(w, r, notesPath)
}
