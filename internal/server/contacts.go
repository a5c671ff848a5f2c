package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/wadesk/internal/models"
)

// handleListContacts handles GET /api/contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.List(r.URL.Query().Get("search"))
	if err != nil {
		s.internalError(w, r, "failed to list contacts", err)
		return
	}
	s.sendJSON(w, http.StatusOK, contacts)
}

// handleCreateContact handles POST /api/contacts
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var patch models.ContactPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	if patch.Name == nil || strings.TrimSpace(*patch.Name) == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if patch.Phone == nil || strings.TrimSpace(*patch.Phone) == "" {
		s.sendError(w, http.StatusBadRequest, "phone is required")
		return
	}

	contact := &models.Contact{LastActive: time.Now()}
	patch.Apply(contact)
	if err := s.contacts.Create(contact); err != nil {
		s.internalError(w, r, "failed to create contact", err)
		return
	}
	s.sendJSON(w, http.StatusCreated, contact)
}

// handleUpdateContact handles PUT /api/contacts/{id}
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	contact, err := s.contacts.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, r, "failed to load contact", err)
		return
	}
	if contact == nil {
		s.sendError(w, http.StatusNotFound, "contact not found")
		return
	}

	var patch models.ContactPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	patch.Apply(contact)
	if strings.TrimSpace(contact.Name) == "" || strings.TrimSpace(contact.Phone) == "" {
		s.sendError(w, http.StatusBadRequest, "name and phone must not be empty")
		return
	}

	if err := s.contacts.Update(contact); err != nil {
		s.internalError(w, r, "failed to update contact", err)
		return
	}
	s.sendJSON(w, http.StatusOK, contact)
}

// handleDeleteContact handles DELETE /api/contacts/{id}
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	ok, err := s.contacts.Delete(chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, r, "failed to delete contact", err)
		return
	}
	if !ok {
		s.sendError(w, http.StatusNotFound, "contact not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
