package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foxzi/wadesk/internal/models"
)

// ListContacts lists all contacts
func (c *Client) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var resp []models.Contact
	if err := c.request(ctx, http.MethodGet, "/contacts/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateContact creates a contact
func (c *Client) CreateContact(ctx context.Context, patch models.ContactPatch) (*models.Contact, error) {
	var resp models.Contact
	if err := c.request(ctx, http.MethodPost, "/contacts/", patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateContact applies a partial update to a contact
func (c *Client) UpdateContact(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error) {
	var resp models.Contact
	if err := c.request(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteContact deletes a contact
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil)
}
