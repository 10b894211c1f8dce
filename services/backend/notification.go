package backendsvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core/notification"
)

var _ notification.API = (*Client)(nil) // interface compliance check

func (c *Client) Notifications(ctx context.Context) ([]notification.Notification, error) {
	var out struct {
		Notifications []notification.Notification `json:"notifications"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/notifications", nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "listing notifications")
	}
	return out.Notifications, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, errors.Wrap(err, "fetching unread count")
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
	return errors.Wrapf(err, "marking notification %s read", id)
}
