package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core/guard"
)

// guardMiddleware protects a route group. The redirect is issued before the
// handler runs, so protected content is never written and then hidden.
// An empty roles list means "authenticated only".
func guardMiddleware(routes guard.Routes, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			mgr, err := contextSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}

			decision := guard.Decide(mgr.State(), roles, routes)
			observeGuardDecision(decision.Outcome)
			switch decision.Outcome {
			case guard.Redirect:
				return ctx.Redirect(http.StatusFound, decision.Target)
			case guard.Loading:
				return renderLoading(ctx)
			default:
				return next(ctx)
			}
		}
	}
}

// guestMiddleware is the inverse guard for login/register: authenticated
// sessions are sent to their role landing page.
func guestMiddleware(routes guard.Routes) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			mgr, err := contextSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}

			decision := guard.DecideGuest(mgr.State(), routes)
			observeGuardDecision(decision.Outcome)
			switch decision.Outcome {
			case guard.Redirect:
				return ctx.Redirect(http.StatusFound, decision.Target)
			case guard.Loading:
				return renderLoading(ctx)
			default:
				return next(ctx)
			}
		}
	}
}

// renderLoading is the neutral placeholder shown while auth state is still
// being resolved.
func renderLoading(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "loading"})
}
