package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/wadesk/internal/models"
)

// handleListChats handles GET /api/chats
func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chats.List()
	if err != nil {
		s.internalError(w, r, "failed to list chats", err)
		return
	}
	s.sendJSON(w, http.StatusOK, chats)
}

// handleStartChat handles POST /api/chats. It returns the contact's chat,
// creating it when missing.
func (s *Server) handleStartChat(w http.ResponseWriter, r *http.Request) {
	var req models.StartChatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ContactID == "" {
		s.sendError(w, http.StatusBadRequest, "contactId is required")
		return
	}

	contact, err := s.contacts.GetByID(req.ContactID)
	if err != nil {
		s.internalError(w, r, "failed to load contact", err)
		return
	}
	if contact == nil {
		s.sendError(w, http.StatusNotFound, "contact not found")
		return
	}

	chat, created, err := s.chats.CreateOrGet(req.ContactID)
	if err != nil {
		s.internalError(w, r, "failed to start chat", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.logger.Info("chat created", "id", chat.ID, "contact_id", chat.ContactID)
	}
	s.sendJSON(w, status, chat)
}

// handleListMessages handles GET /api/chats/{id}/messages. Reading a chat
// marks it as read.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")
	if !s.chatExists(w, r, chatID) {
		return
	}

	msgs, err := s.chats.ListMessages(chatID)
	if err != nil {
		s.internalError(w, r, "failed to list messages", err)
		return
	}
	if err := s.chats.MarkRead(chatID); err != nil {
		s.logger.Warn("failed to mark chat read", "id", chatID, "error", err)
	}
	s.sendJSON(w, http.StatusOK, msgs)
}

// handleSendMessage handles POST /api/chats/{id}/messages
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "id")

	var req models.SendMessageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	if !req.Type.Valid() {
		s.sendError(w, http.StatusBadRequest, "invalid message type")
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.MediaURL == "" {
		s.sendError(w, http.StatusBadRequest, "text or mediaUrl is required")
		return
	}
	if !s.chatExists(w, r, chatID) {
		return
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: models.SenderMe,
		Text:     req.Text,
		Type:     req.Type,
		MediaURL: req.MediaURL,
		Status:   models.MessageSent,
	}
	if err := s.chats.AddMessage(msg); err != nil {
		s.internalError(w, r, "failed to send message", err)
		return
	}

	s.metrics.MessageSent(string(msg.Type))
	s.sendJSON(w, http.StatusCreated, msg)
}

func (s *Server) chatExists(w http.ResponseWriter, r *http.Request, id string) bool {
	chat, err := s.chats.GetByID(id)
	if err != nil {
		s.internalError(w, r, "failed to load chat", err)
		return false
	}
	if chat == nil {
		s.sendError(w, http.StatusNotFound, "chat not found")
		return false
	}
	return true
}
