// Package echoweb is the echo delivery layer of the UPT-PIK web gateway: it
// maps browser sessions onto the client core (session manager, route guard,
// event wizard) and proxies the backend REST API.
package echoweb

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/core/guard"
	"github.com/uptpik/pikweb/core/session"
	backendsvc "github.com/uptpik/pikweb/services/backend"
	"github.com/uptpik/pikweb/storage/kvstore"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool
		API            *backendsvc.Client
		Sessions       kvstore.Store
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts   *Options
		app    *echo.Echo
		routes guard.Routes
		notifs *notifRegistry
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:   opts,
		app:    echo.New(),
		routes: guard.RoutesFromConfig(),
		notifs: newNotifRegistry(opts.API, opts.Logger),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.GetBool("debug")

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.GetBool("testMode")) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, func() { _ = s.Stop(context.Background()) })
	s.app.Debug = debug
	s.app.HideBanner = true

	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.app.Use(sessionMiddleware(s.opts.API, s.opts.Sessions, s.opts.Logger))

	// guest-only surface
	gg := s.app.Group("", guestMiddleware(s.routes))
	gg.GET(s.routes.Login, s.loginForm)
	gg.POST(s.routes.Login, s.login)
	gg.GET("/register", s.registerForm)
	gg.POST("/register", s.register)

	// authenticated surface
	ag := s.app.Group("", guardMiddleware(s.routes))
	ag.GET("/", s.home)
	ag.POST("/logout", s.logout)
	ag.GET("/me", s.me)
	ag.GET("/events", s.listEvents)
	ag.GET("/events/:id", s.getEvent)
	ag.GET("/notifications", s.listNotifications)
	ag.POST("/notifications/:id/read", s.markNotificationRead)

	// admin surface
	adm := s.app.Group("/admin", guardMiddleware(s.routes, session.RoleAdmin))
	adm.GET("/dashboard", s.adminDashboard)
	registerWizardAPI(adm.Group("/events/new"), s)

	// dosen surface
	dg := s.app.Group("/penilaian", guardMiddleware(s.routes, session.RoleDosen, session.RoleAdmin))
	dg.GET("", s.assessmentHome)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
