package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foxzi/wadesk/internal/models"
)

// ListCampaigns lists campaigns
func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var resp []models.Campaign
	if err := c.request(ctx, http.MethodGet, "/campaigns/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateCampaign creates a campaign
func (c *Client) CreateCampaign(ctx context.Context, req models.CampaignRequest) (*models.Campaign, error) {
	var resp models.Campaign
	if err := c.request(ctx, http.MethodPost, "/campaigns/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCampaign deletes a campaign
func (c *Client) DeleteCampaign(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/campaigns/"+url.PathEscape(id), nil, nil)
}

// UpdateCampaignStatus sets a campaign's status
func (c *Client) UpdateCampaignStatus(ctx context.Context, id string, status models.CampaignStatus) (*models.Campaign, error) {
	var resp models.Campaign
	req := models.StatusUpdate{Status: status}
	if err := c.request(ctx, http.MethodPut, "/campaigns/"+url.PathEscape(id)+"/status", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
