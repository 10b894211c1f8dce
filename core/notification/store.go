// Package notification keeps the client-side notification list and unread
// count in sync with the backend. Local mutations are optimistic: applied
// immediately, reconciled on the next full fetch.
package notification

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/uptpik/pikweb/core"
)

type (
	Notification struct {
		ID        string    `json:"id"`
		Judul     string    `json:"judul"`
		Pesan     string    `json:"pesan"`
		IsRead    bool      `json:"isRead"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// API is the backend collaborator.
	API interface {
		Notifications(ctx context.Context) ([]Notification, error)
		UnreadCount(ctx context.Context) (int, error)
		MarkNotificationRead(ctx context.Context, id string) error
	}

	Store struct {
		mu      sync.RWMutex
		items   []Notification
		unread  int
		api     API
		log     core.Logger
		limiter *rate.Limiter
	}
)

func NewStore(api API, log core.Logger) *Store {
	// refreshes are cheap but bursty when several widgets mount at once;
	// cap them at one per second
	return &Store{api: api, log: log, limiter: rate.NewLimiter(rate.Every(time.Second), 1)}
}

// Items returns a copy of the current notification list.
func (s *Store) Items() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.items...)
}

func (s *Store) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Refresh replaces the local list and unread count with the backend's view,
// discarding any optimistic local state.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.limiter.Allow() {
		return nil // a refresh just happened; the current state is fresh enough
	}

	items, err := s.api.Notifications(ctx)
	if err != nil {
		return err
	}
	var unread int
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}

	s.mu.Lock()
	s.items = items
	s.unread = unread
	s.mu.Unlock()
	return nil
}

// MarkRead flags a notification read locally first, then tells the backend.
// The backend call is best-effort; a failure is logged and the next Refresh
// reconciles.
func (s *Store) MarkRead(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id && !s.items[i].IsRead {
			s.items[i].IsRead = true
			if s.unread > 0 {
				s.unread--
			}
			break
		}
	}
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.log.Warn("marking notification read", err)
	}
}

// StartPolling refreshes the unread count on the given interval until ctx is
// done. Poll failures are quiet; the stale count simply persists.
func (s *Store) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count, err := s.api.UnreadCount(ctx)
				if err != nil {
					s.log.Debug("unread count poll failed", err)
					continue
				}
				s.mu.Lock()
				s.unread = count
				s.mu.Unlock()
			}
		}
	}()
}
