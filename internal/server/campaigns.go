package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/wadesk/internal/models"
)

// handleListCampaigns handles GET /api/campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.campaigns.List()
	if err != nil {
		s.internalError(w, r, "failed to list campaigns", err)
		return
	}
	s.sendJSON(w, http.StatusOK, campaigns)
}

// handleCreateCampaign handles POST /api/campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req models.CampaignRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TotalContacts < 0 {
		s.sendError(w, http.StatusBadRequest, "totalContacts must not be negative")
		return
	}
	if req.Status == "" {
		req.Status = models.CampaignDraft
	}
	if !req.Status.Valid() {
		s.sendError(w, http.StatusBadRequest, "invalid campaign status")
		return
	}

	c := &models.Campaign{
		Name:          req.Name,
		Status:        req.Status,
		TotalContacts: req.TotalContacts,
		TemplateID:    req.TemplateID,
		TemplateName:  req.TemplateName,
		Goal:          req.Goal,
		ScheduledDate: req.ScheduledDate,
	}
	if err := s.campaigns.Create(c); err != nil {
		s.internalError(w, r, "failed to create campaign", err)
		return
	}

	s.metrics.CampaignCreated()
	s.logger.Info("campaign created", "id", c.ID, "name", c.Name)
	s.sendJSON(w, http.StatusCreated, c)
}

// handleDeleteCampaign handles DELETE /api/campaigns/{id}
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	ok, err := s.campaigns.Delete(chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, r, "failed to delete campaign", err)
		return
	}
	if !ok {
		s.sendError(w, http.StatusNotFound, "campaign not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateCampaignStatus handles PUT /api/campaigns/{id}/status
func (s *Server) handleUpdateCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var req models.StatusUpdate
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		s.sendError(w, http.StatusBadRequest, "invalid campaign status")
		return
	}

	c, err := s.campaigns.UpdateStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.internalError(w, r, "failed to update campaign", err)
		return
	}
	if c == nil {
		s.sendError(w, http.StatusNotFound, "campaign not found")
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}
