package echoweb

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/core/wizard"
	"github.com/uptpik/pikweb/storage/kvstore"
)

// draftKey holds the in-progress event creation form in the session store so
// the wizard survives page loads between steps.
const draftKey = "eventDraft"

type (
	wizardDraft struct {
		Step int             `json:"step"`
		Data wizard.FormData `json:"data"`
	}

	// eventInfoRequest is the step-1 partial update; nil fields stay untouched.
	eventInfoRequest struct {
		Nama               *string `json:"nama" form:"nama"`
		Deskripsi          *string `json:"deskripsi" form:"deskripsi"`
		Semester           *string `json:"semester" form:"semester"`
		TahunAjaran        *string `json:"tahunAjaran" form:"tahunAjaran"`
		Lokasi             *string `json:"lokasi" form:"lokasi"`
		TanggalPelaksanaan *string `json:"tanggalPelaksanaan" form:"tanggalPelaksanaan"`
		MulaiPendaftaran   *string `json:"mulaiPendaftaran" form:"mulaiPendaftaran"`
		AkhirPendaftaran   *string `json:"akhirPendaftaran" form:"akhirPendaftaran"`
		KuotaPeserta       *int    `json:"kuotaPeserta" form:"kuotaPeserta"`
	}

	sponsorRequest struct {
		Nama string `json:"nama" form:"nama" validate:"required"`
		Logo string `json:"logo" form:"logo"`
	}

	kategoriRequest struct {
		Nama      string            `json:"nama" form:"nama" validate:"required"`
		Deskripsi string            `json:"deskripsi" form:"deskripsi"`
		Penilai   []string          `json:"penilai" form:"penilai"`
		Kriteria  []wizard.Kriteria `json:"kriteria"`
	}
)

func (r eventInfoRequest) patch() wizard.Patch {
	return wizard.Patch{
		Nama:               r.Nama,
		Deskripsi:          r.Deskripsi,
		Semester:           r.Semester,
		TahunAjaran:        r.TahunAjaran,
		Lokasi:             r.Lokasi,
		TanggalPelaksanaan: r.TanggalPelaksanaan,
		MulaiPendaftaran:   r.MulaiPendaftaran,
		AkhirPendaftaran:   r.AkhirPendaftaran,
		KuotaPeserta:       r.KuotaPeserta,
	}
}

func registerWizardAPI(g *echo.Group, s *server) {
	g.GET("", s.wizardState)
	g.POST("", s.wizardUpdate)
	g.POST("/next", s.wizardNext)
	g.POST("/back", s.wizardBack)
	g.POST("/sponsors", s.wizardAddSponsor)
	g.DELETE("/sponsors/:id", s.wizardRemoveSponsor)
	g.POST("/kategori", s.wizardAddKategori)
	g.DELETE("/kategori/:id", s.wizardRemoveKategori)
	g.POST("/submit", s.wizardSubmit)
	g.POST("/cancel", s.wizardCancel)
}

func loadWizard(ctx echo.Context) (*wizard.Wizard, kvstore.Store, error) {
	store, err := contextSessionStore(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "getting session store")
	}

	w := wizard.New(nil)
	raw, err := store.Get(ctx.Request().Context(), draftKey)
	if err != nil {
		if errors.Cause(err) != kvstore.ErrNotFound {
			// every session rides on this store; losing it is fatal
			return nil, nil, core.NewShutdownError("session store unreachable: " + err.Error())
		}
		return w, store, nil
	}

	var draft wizardDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		// a corrupt draft starts the wizard over instead of wedging it
		return w, store, nil
	}
	w.Restore(draft.Step, draft.Data)
	return w, store, nil
}

func saveWizard(ctx echo.Context, store kvstore.Store, w *wizard.Wizard) error {
	raw, err := json.Marshal(wizardDraft{Step: w.Step(), Data: w.Data()})
	if err != nil {
		return errors.Wrap(err, "encoding wizard draft")
	}
	if err := store.Set(ctx.Request().Context(), draftKey, string(raw)); err != nil {
		return core.NewShutdownError("session store unreachable: " + err.Error())
	}
	return nil
}

func (s *server) wizardJSON(ctx echo.Context, w *wizard.Wizard) error {
	return ctx.JSON(http.StatusOK, echo.Map{"step": w.Step(), "data": w.Data()})
}

func (s *server) wizardState(ctx echo.Context) error {
	w, _, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardUpdate(ctx echo.Context) error {
	var req eventInfoRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to eventInfoRequest")
	}

	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	w.UpdateData(req.patch())
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardNext(ctx echo.Context) error {
	var req eventInfoRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to eventInfoRequest")
	}

	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	w.UpdateData(req.patch())
	if err := w.Next(); err != nil {
		// persist the partial input anyway so nothing typed is lost
		if saveErr := saveWizard(ctx, store, w); saveErr != nil {
			return saveErr
		}
		return err // *core.ValidationError, rendered as a 400 field map
	}
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardBack(ctx echo.Context) error {
	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	w.Previous()
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardAddSponsor(ctx echo.Context) error {
	var req sponsorRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to sponsorRequest")
	}

	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	sp := w.AddSponsor(req.Nama, req.Logo)
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sp)
}

func (s *server) wizardRemoveSponsor(ctx echo.Context) error {
	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	w.RemoveSponsor(ctx.Param("id"))
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardAddKategori(ctx echo.Context) error {
	var req kategoriRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to kategoriRequest")
	}

	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	kat := w.AddKategori(req.Nama, req.Deskripsi, req.Penilai, req.Kriteria)
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, kat)
}

func (s *server) wizardRemoveKategori(ctx echo.Context) error {
	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	w.RemoveKategori(ctx.Param("id"))
	if err := saveWizard(ctx, store, w); err != nil {
		return err
	}
	return s.wizardJSON(ctx, w)
}

func (s *server) wizardSubmit(ctx echo.Context) error {
	mgr, err := contextSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}

	w, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	if w.Step() != wizard.StepAssessment {
		return echo.NewHTTPError(http.StatusConflict, "wizard is not at the final step")
	}
	if err := w.ValidateAssessment(); err != nil {
		return err // *core.ValidationError, rendered as a 400 field map
	}

	payload, err := w.PrepareForSubmit()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	event, err := s.opts.API.WithToken(mgr.State().Token).CreateEvent(ctx.Request().Context(), payload)
	backendRequestDuration.Observe(time.Since(start).Seconds())
	observeEventCreation(err == nil)
	if err != nil {
		return s.backendError(err)
	}

	w.Reset()
	if err := store.Delete(ctx.Request().Context(), draftKey); err != nil {
		s.opts.Logger.Warn("clearing wizard draft", err)
	}
	return ctx.JSON(http.StatusCreated, event)
}

func (s *server) wizardCancel(ctx echo.Context) error {
	_, store, err := loadWizard(ctx)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx.Request().Context(), draftKey); err != nil {
		s.opts.Logger.Warn("clearing wizard draft", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
