package apiclient

import (
	"context"

	"retailadmin/models"
)

// Login exchanges credentials for a session. The caller decides where to persist it.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.Session, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Identifier: identifier, Password: password}
	if err := c.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return toSession(resp)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, user models.Record) (models.Record, error) {
	var out models.Record
	if err := c.Post(ctx, "/auth/register", user, &out); err != nil {
		return nil, err
	}
	return unwrap(out), nil
}

// Refresh asks the API for a fresh token for the current session.
func (c *Client) Refresh(ctx context.Context) (*models.Session, error) {
	var resp models.LoginResponse
	if err := c.Post(ctx, "/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return toSession(resp)
}

func toSession(resp models.LoginResponse) (*models.Session, error) {
	if resp.Token == "" {
		return nil, ErrNoToken
	}
	user := resp.User
	if user == nil {
		user = models.Record{}
	}
	return &models.Session{Token: resp.Token, User: user}, nil
}
