package backendsvc

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core/session"
)

var _ session.API = (*Client)(nil) // interface compliance check

func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.AuthPayload, error) {
	var payload session.AuthPayload
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &payload); err != nil {
		return session.AuthPayload{}, errors.Wrap(err, "logging in")
	}
	return payload, nil
}

func (c *Client) Register(ctx context.Context, reg session.Registration) (session.AuthPayload, error) {
	var payload session.AuthPayload
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &payload); err != nil {
		return session.AuthPayload{}, errors.Wrap(err, "registering")
	}
	return payload, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.WithToken(token).do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	return errors.Wrap(err, "logging out")
}

func (c *Client) CurrentUser(ctx context.Context, token string) (session.User, error) {
	var out struct {
		User session.User `json:"user"`
	}
	if _, err := c.WithToken(token).do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return session.User{}, errors.Wrap(err, "fetching current user")
	}
	return out.User, nil
}
