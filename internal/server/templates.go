package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/wadesk/internal/models"
)

// Template defaults
const (
	DefaultLanguage = "en_US"
	DefaultCategory = models.CategoryMarketing
)

// validateTemplate checks the fields every stored template needs
func validateTemplate(t *models.Template) string {
	if strings.TrimSpace(t.Name) == "" {
		return "name is required"
	}
	if !t.Category.Valid() {
		return "invalid template category"
	}
	if t.Components.Body() == "" {
		return "a BODY component is required"
	}
	return ""
}

// handleListTemplates handles GET /api/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.List()
	if err != nil {
		s.internalError(w, r, "failed to list templates", err)
		return
	}
	s.sendJSON(w, http.StatusOK, templates)
}

// handleCreateTemplate handles POST /api/templates. New templates always
// start pending approval.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.Template
	if !s.decodeJSON(w, r, &t) {
		return
	}
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if msg := validateTemplate(&t); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}
	t.Status = models.TemplatePending
	t.UsageCount = 0

	if err := s.templates.Create(&t); err != nil {
		s.internalError(w, r, "failed to create template", err)
		return
	}
	s.logger.Info("template submitted", "id", t.ID, "name", t.Name)
	s.sendJSON(w, http.StatusCreated, t)
}

// handleUpdateTemplate handles PUT /api/templates/{id}
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.templates.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, r, "failed to load template", err)
		return
	}
	if t == nil {
		s.sendError(w, http.StatusNotFound, "template not found")
		return
	}

	var patch models.TemplatePatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	patch.Apply(t)
	if msg := validateTemplate(t); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}
	// an edited template goes back to review
	t.Status = models.TemplatePending

	if err := s.templates.Update(t); err != nil {
		s.internalError(w, r, "failed to update template", err)
		return
	}
	s.sendJSON(w, http.StatusOK, t)
}

// handleDeleteTemplate handles DELETE /api/templates/{id}
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ok, err := s.templates.Delete(chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, r, "failed to delete template", err)
		return
	}
	if !ok {
		s.sendError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
