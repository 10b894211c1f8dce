package echoweb

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/core/notification"
	backendsvc "github.com/uptpik/pikweb/services/backend"
)

type (
	notifEntry struct {
		store  *notification.Store
		cancel context.CancelFunc
	}

	// notifRegistry keeps one notification store per authenticated session so
	// optimistic mark-read state survives between requests. Stores are keyed
	// by token; each runs a background unread poll until the entry is evicted
	// on logout.
	notifRegistry struct {
		sync.Mutex
		table        map[string]*notifEntry
		api          *backendsvc.Client
		log          core.Logger
		pollInterval time.Duration
	}
)

func newNotifRegistry(api *backendsvc.Client, log core.Logger) *notifRegistry {
	return &notifRegistry{
		table:        make(map[string]*notifEntry),
		api:          api,
		log:          log,
		pollInterval: core.Conf.GetDuration("notifPollInterval"),
	}
}

func (r *notifRegistry) forToken(token string) *notification.Store {
	r.Lock()
	defer r.Unlock()

	if e, ok := r.table[token]; ok {
		return e.store
	}
	store := notification.NewStore(r.api.WithToken(token), r.log)
	ctx, cancel := context.WithCancel(context.Background())
	store.StartPolling(ctx, r.pollInterval)
	r.table[token] = &notifEntry{store: store, cancel: cancel}
	return store
}

// evict stops the session's poll and drops its store, keeping stale entries
// from piling up for the process lifetime.
func (r *notifRegistry) evict(token string) {
	r.Lock()
	defer r.Unlock()

	if e, ok := r.table[token]; ok {
		e.cancel()
		delete(r.table, token)
	}
}

func (s *server) listNotifications(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	store := s.notifs.forToken(mgr.State().Token)
	if err := store.Refresh(ctx.Request().Context()); err != nil {
		return s.backendError(err)
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"notifications": store.Items(),
		"unread":        store.Unread(),
	})
}

func (s *server) markNotificationRead(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	store := s.notifs.forToken(mgr.State().Token)
	store.MarkRead(ctx.Request().Context(), ctx.Param("id"))
	return ctx.JSON(http.StatusOK, echo.Map{"unread": store.Unread()})
}
