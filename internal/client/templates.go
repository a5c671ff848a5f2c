package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foxzi/wadesk/internal/models"
)

// ListTemplates lists message templates
func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var resp []models.Template
	if err := c.request(ctx, http.MethodGet, "/templates/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateTemplate submits a template for approval
func (c *Client) CreateTemplate(ctx context.Context, t *models.Template) (*models.Template, error) {
	var resp models.Template
	if err := c.request(ctx, http.MethodPost, "/templates/", t, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTemplate applies a partial update to a template
func (c *Client) UpdateTemplate(ctx context.Context, id string, patch models.TemplatePatch) (*models.Template, error) {
	var resp models.Template
	if err := c.request(ctx, http.MethodPut, "/templates/"+url.PathEscape(id), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTemplate deletes a template
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/templates/"+url.PathEscape(id), nil, nil)
}
