package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core/guard"
	"github.com/uptpik/pikweb/core/session"
)

func (s *server) loginForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "login"})
}

func (s *server) registerForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "register"})
}

func (s *server) login(ctx echo.Context) error {
	var creds session.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	res := mgr.Login(ctx.Request().Context(), creds)
	observeLogin(res.OK)
	if !res.OK {
		return echo.NewHTTPError(http.StatusUnauthorized, res.Err)
	}

	// route on the freshly returned user, not on a re-read of shared state
	return ctx.Redirect(http.StatusSeeOther, guard.LandingFor(res.User, s.routes))
}

func (s *server) register(ctx echo.Context) error {
	var reg session.Registration
	if err := ctx.Bind(&reg); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	res := mgr.Register(ctx.Request().Context(), reg)
	if !res.OK {
		return echo.NewHTTPError(http.StatusBadRequest, res.Err)
	}
	return ctx.Redirect(http.StatusSeeOther, guard.LandingFor(res.User, s.routes))
}

func (s *server) logout(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	s.notifs.evict(mgr.State().Token)
	mgr.Logout(ctx.Request().Context())
	return ctx.Redirect(http.StatusSeeOther, s.routes.Login)
}

func (s *server) me(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": mgr.State().User})
}

func (s *server) home(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "home", "user": mgr.State().User})
}

func (s *server) adminDashboard(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "admin-dashboard", "user": mgr.State().User})
}

func (s *server) assessmentHome(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"page": "penilaian", "user": mgr.State().User})
}
