package backendsvc

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core/wizard"
)

type (
	// Event is a marketplace event as the backend returns it; all instants
	// are UTC.
	Event struct {
		ID                 string           `json:"id"`
		Nama               string           `json:"nama"`
		Deskripsi          string           `json:"deskripsi"`
		Semester           string           `json:"semester"`
		TahunAjaran        string           `json:"tahunAjaran"`
		Lokasi             string           `json:"lokasi"`
		TanggalPelaksanaan time.Time        `json:"tanggalPelaksanaan"`
		MulaiPendaftaran   time.Time        `json:"mulaiPendaftaran"`
		AkhirPendaftaran   time.Time        `json:"akhirPendaftaran"`
		KuotaPeserta       int              `json:"kuotaPeserta"`
		Status             string           `json:"status"`
		Sponsor            []wizard.Sponsor `json:"sponsor,omitempty"`
	}

	EventFilters struct {
		Search   string
		Semester string
		Status   string
		Page     int
		Limit    int
	}
)

func (f EventFilters) query() url.Values {
	v := make(url.Values)
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Semester != "" {
		v.Set("semester", f.Semester)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// CreateEvent submits a wizard-prepared payload (UTC date-times, weights
// already validated).
func (c *Client) CreateEvent(ctx context.Context, payload wizard.FormData) (Event, error) {
	var ev Event
	if _, err := c.do(ctx, http.MethodPost, "/marketplace/events", nil, payload, &ev); err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}
	return ev, nil
}

func (c *Client) Events(ctx context.Context, filters EventFilters) ([]Event, *Pagination, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	pg, err := c.do(ctx, http.MethodGet, "/marketplace/events", filters.query(), nil, &out)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing events")
	}
	return out.Events, pg, nil
}

func (c *Client) EventByID(ctx context.Context, id string) (Event, error) {
	var ev Event
	if _, err := c.do(ctx, http.MethodGet, "/marketplace/events/"+url.PathEscape(id), nil, nil, &ev); err != nil {
		return Event{}, errors.Wrapf(err, "fetching event %s", id)
	}
	return ev, nil
}
