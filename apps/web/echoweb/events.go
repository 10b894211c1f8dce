package echoweb

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	backendsvc "github.com/uptpik/pikweb/services/backend"
)

func (s *server) listEvents(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	filters := backendsvc.EventFilters{
		Search:   ctx.QueryParam("search"),
		Semester: ctx.QueryParam("semester"),
		Status:   ctx.QueryParam("status"),
	}
	filters.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	filters.Limit, _ = strconv.Atoi(ctx.QueryParam("limit"))

	start := time.Now()
	events, pagination, err := s.opts.API.WithToken(mgr.State().Token).Events(ctx.Request().Context(), filters)
	backendRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return s.backendError(err)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"events": events, "pagination": pagination})
}

func (s *server) getEvent(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	start := time.Now()
	event, err := s.opts.API.WithToken(mgr.State().Token).EventByID(ctx.Request().Context(), ctx.Param("id"))
	backendRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return s.backendError(err)
	}
	return ctx.JSON(http.StatusOK, event)
}

// backendError maps backend failures onto gateway responses: the server
// message passes through with its status, anything else is a 502.
func (s *server) backendError(err error) error {
	if apiErr, ok := errors.Cause(err).(*backendsvc.APIError); ok {
		switch apiErr.Status {
		case http.StatusNotFound:
			return errHttpNotFound
		case http.StatusForbidden:
			return errHttpForbidden
		default:
			return echo.NewHTTPError(apiErr.Status, apiErr.Message)
		}
	}
	return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable").SetInternal(err)
}
