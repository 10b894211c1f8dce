// Package wizard coordinates the 3-step marketplace-event creation form:
// event info, sponsors, assessment categories. It is a pure state machine;
// submission of the prepared payload is the caller's concern.
package wizard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core"
)

// Steps, linear; no branching, no skipping.
const (
	StepEventInfo  = 1
	StepSponsor    = 2
	StepAssessment = 3
)

// localTimeLayouts are the accepted formats of the local date-time fields,
// as submitted by a datetime-local input.
var localTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

type (
	Sponsor struct {
		ID   string `json:"id"`
		Nama string `json:"nama"`
		Logo string `json:"logo"`
	}

	// Kriteria is one scoring criterion; Bobot is an integer percentage
	// weight. A category's weights must total exactly 100.
	Kriteria struct {
		Nama  string `json:"nama"`
		Bobot int    `json:"bobot"`
	}

	Kategori struct {
		ID        string     `json:"id"`
		Nama      string     `json:"nama"`
		Deskripsi string     `json:"deskripsi"`
		Penilai   []string   `json:"penilai"` // assigned reviewer (dosen) IDs
		Kriteria  []Kriteria `json:"kriteria"`
	}

	// FormData accumulates the event across steps. The three date-time
	// fields hold local wall-clock strings until PrepareForSubmit converts
	// them to UTC.
	FormData struct {
		Nama               string     `json:"nama"`
		Deskripsi          string     `json:"deskripsi"`
		Semester           string     `json:"semester"`
		TahunAjaran        string     `json:"tahunAjaran"`
		Lokasi             string     `json:"lokasi"`
		TanggalPelaksanaan string     `json:"tanggalPelaksanaan"`
		MulaiPendaftaran   string     `json:"mulaiPendaftaran"`
		AkhirPendaftaran   string     `json:"akhirPendaftaran"`
		KuotaPeserta       int        `json:"kuotaPeserta"`
		Sponsor            []Sponsor  `json:"sponsor"`
		KategoriPenilaian  []Kategori `json:"kategoriPenilaian"`
	}

	// Patch is a partial FormData for UpdateData; nil fields are left
	// untouched, slices replace the whole sequence when non-nil.
	Patch struct {
		Nama               *string
		Deskripsi          *string
		Semester           *string
		TahunAjaran        *string
		Lokasi             *string
		TanggalPelaksanaan *string
		MulaiPendaftaran   *string
		AkhirPendaftaran   *string
		KuotaPeserta       *int
		Sponsor            []Sponsor
		KategoriPenilaian  []Kategori
	}

	Wizard struct {
		step int
		data FormData
		loc  *time.Location
	}
)

// New returns a wizard at step 1 with empty form data. loc is the timezone
// the local date-time fields are interpreted in; nil means the configured
// default.
func New(loc *time.Location) *Wizard {
	if loc == nil {
		loc = core.DefaultLocation()
	}
	return &Wizard{step: StepEventInfo, loc: loc}
}

func (w *Wizard) Step() int { return w.step }

// Data returns a copy of the accumulated form data.
func (w *Wizard) Data() FormData {
	d := w.data
	d.Sponsor = append([]Sponsor(nil), w.data.Sponsor...)
	d.KategoriPenilaian = append([]Kategori(nil), w.data.KategoriPenilaian...)
	return d
}

// Restore replaces the wizard state wholesale; the web gateway uses it to
// rehydrate a draft persisted between steps.
func (w *Wizard) Restore(step int, data FormData) {
	if step < StepEventInfo {
		step = StepEventInfo
	}
	if step > StepAssessment {
		step = StepAssessment
	}
	w.step = step
	w.data = data
}

// UpdateData shallow-merges the patch into the form data; unspecified fields
// keep their value. Allowed from any step.
func (w *Wizard) UpdateData(p Patch) {
	if p.Nama != nil {
		w.data.Nama = *p.Nama
	}
	if p.Deskripsi != nil {
		w.data.Deskripsi = *p.Deskripsi
	}
	if p.Semester != nil {
		w.data.Semester = *p.Semester
	}
	if p.TahunAjaran != nil {
		w.data.TahunAjaran = *p.TahunAjaran
	}
	if p.Lokasi != nil {
		w.data.Lokasi = *p.Lokasi
	}
	if p.TanggalPelaksanaan != nil {
		w.data.TanggalPelaksanaan = *p.TanggalPelaksanaan
	}
	if p.MulaiPendaftaran != nil {
		w.data.MulaiPendaftaran = *p.MulaiPendaftaran
	}
	if p.AkhirPendaftaran != nil {
		w.data.AkhirPendaftaran = *p.AkhirPendaftaran
	}
	if p.KuotaPeserta != nil {
		w.data.KuotaPeserta = *p.KuotaPeserta
	}
	if p.Sponsor != nil {
		w.data.Sponsor = p.Sponsor
	}
	if p.KategoriPenilaian != nil {
		w.data.KategoriPenilaian = p.KategoriPenilaian
	}
}

// AddSponsor appends a sponsor with a fresh local ID so form rows can be
// addressed before the event exists server-side.
func (w *Wizard) AddSponsor(nama, logo string) Sponsor {
	sp := Sponsor{ID: uuid.NewString(), Nama: core.CleanString(nama), Logo: logo}
	w.data.Sponsor = append(w.data.Sponsor, sp)
	return sp
}

func (w *Wizard) RemoveSponsor(id string) {
	for i, sp := range w.data.Sponsor {
		if sp.ID == id {
			w.data.Sponsor = append(w.data.Sponsor[:i], w.data.Sponsor[i+1:]...)
			return
		}
	}
}

// AddKategori appends an assessment category with a fresh local ID.
func (w *Wizard) AddKategori(nama, deskripsi string, penilai []string, kriteria []Kriteria) Kategori {
	kat := Kategori{
		ID:        uuid.NewString(),
		Nama:      core.CleanString(nama),
		Deskripsi: deskripsi,
		Penilai:   penilai,
		Kriteria:  kriteria,
	}
	w.data.KategoriPenilaian = append(w.data.KategoriPenilaian, kat)
	return kat
}

func (w *Wizard) RemoveKategori(id string) {
	for i, kat := range w.data.KategoriPenilaian {
		if kat.ID == id {
			w.data.KategoriPenilaian = append(w.data.KategoriPenilaian[:i], w.data.KategoriPenilaian[i+1:]...)
			return
		}
	}
}

// Next advances one step, capped at the last step. Leaving step 1 requires
// the event info to validate; on failure the step does not change and the
// validation message is returned.
func (w *Wizard) Next() error {
	if w.step == StepEventInfo {
		if err := w.ValidateEventInfo(); err != nil {
			return err
		}
	}
	if w.step < StepAssessment {
		w.step++
	}
	return nil
}

// Previous goes one step back, floored at step 1. Going back never validates.
func (w *Wizard) Previous() {
	if w.step > StepEventInfo {
		w.step--
	}
}

// ValidateEventInfo checks the step-1 fields. Failures come back as
// *core.ValidationError attributed to the offending field; only the first
// violated rule is reported per call.
func (w *Wizard) ValidateEventInfo() error {
	if core.CleanString(w.data.Nama) == "" {
		return core.NewFieldValidationError("nama", "nama event wajib diisi")
	}
	if core.CleanString(w.data.Semester) == "" {
		return core.NewFieldValidationError("semester", "semester wajib diisi")
	}
	if core.CleanString(w.data.TahunAjaran) == "" {
		return core.NewFieldValidationError("tahunAjaran", "tahun ajaran wajib diisi")
	}

	mulai, err := w.parseLocal(w.data.MulaiPendaftaran)
	if err != nil {
		return core.NewFieldValidationError("mulaiPendaftaran", "waktu mulai pendaftaran tidak valid")
	}
	akhir, err := w.parseLocal(w.data.AkhirPendaftaran)
	if err != nil {
		return core.NewFieldValidationError("akhirPendaftaran", "waktu akhir pendaftaran tidak valid")
	}
	pelaksanaan, err := w.parseLocal(w.data.TanggalPelaksanaan)
	if err != nil {
		return core.NewFieldValidationError("tanggalPelaksanaan", "tanggal pelaksanaan tidak valid")
	}

	// strict chronological ordering, compared as local instants
	if !mulai.Before(akhir) {
		return core.NewFieldValidationError("mulaiPendaftaran", "waktu mulai pendaftaran harus sebelum waktu akhir pendaftaran")
	}
	if !akhir.Before(pelaksanaan) {
		return core.NewFieldValidationError("akhirPendaftaran", "pendaftaran harus ditutup sebelum tanggal pelaksanaan")
	}
	return nil
}

// ValidateAssessment checks the step-3 categories: at least one category, and
// each category's criterion weights must total exactly 100.
func (w *Wizard) ValidateAssessment() error {
	if len(w.data.KategoriPenilaian) == 0 {
		return core.NewFieldValidationError("kategoriPenilaian", "minimal satu kategori penilaian wajib diisi")
	}
	for _, kat := range w.data.KategoriPenilaian {
		var total int
		for _, kr := range kat.Kriteria {
			total += kr.Bobot
		}
		if total != 100 {
			msg := fmt.Sprintf("total bobot kriteria kategori %q harus 100, saat ini %d", kat.Nama, total)
			return core.NewFieldValidationError("kategoriPenilaian", msg)
		}
	}
	return nil
}

// PrepareForSubmit returns the form data with the three local date-time
// fields replaced by their UTC-normalized ISO-8601 equivalents; all other
// fields pass through unchanged.
func (w *Wizard) PrepareForSubmit() (FormData, error) {
	out := w.Data()
	for _, fld := range []*string{&out.MulaiPendaftaran, &out.AkhirPendaftaran, &out.TanggalPelaksanaan} {
		t, err := w.parseLocal(*fld)
		if err != nil {
			return FormData{}, errors.Wrapf(err, "parsing %q", *fld)
		}
		*fld = t.UTC().Format("2006-01-02T15:04:05.000") + "Z"
	}
	return out, nil
}

// Reset restores empty defaults and returns to step 1. Used after successful
// submission or explicit cancellation.
func (w *Wizard) Reset() {
	w.step = StepEventInfo
	w.data = FormData{}
}

func (w *Wizard) parseLocal(value string) (time.Time, error) {
	value = core.CleanString(value)
	if value == "" {
		return time.Time{}, errors.New("empty date-time")
	}
	var firstErr error
	for _, layout := range localTimeLayouts {
		t, err := time.ParseInLocation(layout, value, w.loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
