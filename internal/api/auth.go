package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"foliochat/internal/logging"
)

// Register creates a new account and installs the returned token on
// the client.
func (c *Client) Register(ctx context.Context, email, password, name string) (*TokenResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email required")
	}
	if password == "" {
		return nil, fmt.Errorf("password required")
	}

	var token TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}, &token)
	if err != nil {
		return nil, err
	}

	c.SetToken(token.AccessToken)
	logging.API("registered account %s", token.User.Email)
	return &token, nil
}

// Login authenticates an existing account and installs the returned
// token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email required")
	}

	var token TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &token)
	if err != nil {
		return nil, err
	}

	c.SetToken(token.AccessToken)
	logging.API("logged in as %s", token.User.Email)
	return &token, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
