package echoweb

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/core/session"
	backendsvc "github.com/uptpik/pikweb/services/backend"
	"github.com/uptpik/pikweb/storage/kvstore"
)

const (
	contextSessionKey = "pikSession"
	contextStoreKey   = "pikSessionStore"
)

var errNoSessionInCtx = errors.New("session manager not found in echo.Context")

// sessionMiddleware resolves the browser session: it ensures a session cookie
// exists, scopes the shared key-value store to that session, and builds an
// initialized session.Manager for the request.
func sessionMiddleware(api *backendsvc.Client, store kvstore.Store, log core.Logger) echo.MiddlewareFunc {
	cookieName := core.Conf.GetString("sessionCookieName")
	cookieMaxAge := core.Conf.GetDuration("sessionCookieMaxAge")
	refreshWithin := core.Conf.GetDuration("tokenRefreshWithin")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sid := ""
			if cookie, err := ctx.Cookie(cookieName); err == nil {
				sid = cookie.Value
			}
			if sid == "" {
				sid = uuid.NewString()
				ctx.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    sid,
					Path:     "/",
					Expires:  time.Now().Add(cookieMaxAge),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			tokens := kvstore.WithPrefix(store, "sess:"+sid+":")
			mgr := session.NewManager(api, tokens, log)
			mgr.Initialize(ctx.Request().Context())

			// quiet refresh: re-validate a near-expiry (or uninspectable)
			// token now so the session ends here, not on a backend 401
			// halfway through the request
			if st := mgr.State(); st.IsAuthenticated && mgr.TokenExpiresWithin(refreshWithin) {
				mgr.GetCurrentUser(ctx.Request().Context())
			}

			ctx.Set(contextSessionKey, mgr)
			ctx.Set(contextStoreKey, tokens)
			return next(ctx)
		}
	}
}

func contextSession(ctx echo.Context) (*session.Manager, error) {
	if mgr, ok := ctx.Get(contextSessionKey).(*session.Manager); ok {
		return mgr, nil
	}
	return nil, errNoSessionInCtx
}

// contextSessionStore returns the request's session-scoped key-value store
// (used for wizard drafts).
func contextSessionStore(ctx echo.Context) (kvstore.Store, error) {
	if store, ok := ctx.Get(contextStoreKey).(kvstore.Store); ok {
		return store, nil
	}
	return nil, errNoSessionInCtx
}
