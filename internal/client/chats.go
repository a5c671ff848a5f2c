package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foxzi/wadesk/internal/models"
)

// ListChats lists chat sessions
func (c *Client) ListChats(ctx context.Context) ([]models.ChatSession, error) {
	var resp []models.ChatSession
	if err := c.request(ctx, http.MethodGet, "/chats", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// StartChat returns the chat for a contact, creating it when missing
func (c *Client) StartChat(ctx context.Context, contactID string) (*models.ChatSession, error) {
	var resp models.ChatSession
	req := models.StartChatRequest{ContactID: contactID}
	if err := c.request(ctx, http.MethodPost, "/chats", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMessages lists the messages of a chat
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var resp []models.Message
	if err := c.request(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SendMessage posts a message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID string, req models.SendMessageRequest) (*models.Message, error) {
	var resp models.Message
	if err := c.request(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
