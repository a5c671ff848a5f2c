package client

import (
	"context"
	"net/http"

	"github.com/foxzi/wadesk/internal/models"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a user and token
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var resp models.AuthResult
	req := LoginRequest{Email: email, Password: password}
	if err := c.request(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its user and token
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	var resp models.AuthResult
	req := RegisterRequest{Name: name, Email: email, Password: password}
	if err := c.request(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the current user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp models.User
	if err := c.request(ctx, http.MethodGet, "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMe updates the current user's profile
func (c *Client) UpdateMe(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	var resp models.User
	if err := c.request(ctx, http.MethodPut, "/users/me", patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
