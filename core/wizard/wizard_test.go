package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uptpik/pikweb/core"
)

func strptr(s string) *string { return &s }

func validEventInfo() Patch {
	return Patch{
		Nama:               strptr("Pasar Wirausaha Mahasiswa"),
		Semester:           strptr("Ganjil"),
		TahunAjaran:        strptr("2025/2026"),
		Lokasi:             strptr("Gedung Serbaguna"),
		MulaiPendaftaran:   strptr("2025-05-01T08:00"),
		AkhirPendaftaran:   strptr("2025-05-20T17:00"),
		TanggalPelaksanaan: strptr("2025-06-01T09:00"),
	}
}

func kategoriWithWeights(nama string, weights ...int) Kategori {
	kriteria := make([]Kriteria, 0, len(weights))
	for _, w := range weights {
		kriteria = append(kriteria, Kriteria{Nama: nama + "-kriteria", Bobot: w})
	}
	return Kategori{Nama: nama, Kriteria: kriteria}
}

func TestWizard_Next(t *testing.T) {
	t.Run("step 1 refuses to advance on invalid info", func(t *testing.T) {
		w := New(time.UTC)
		err := w.Next()
		require.Error(t, err)
		assert.Equal(t, "nama event wajib diisi", err.Error())
		assert.Equal(t, StepEventInfo, w.Step())
	})

	t.Run("date ordering violation refuses to advance", func(t *testing.T) {
		w := New(time.UTC)
		p := validEventInfo()
		p.AkhirPendaftaran = strptr("2025-06-10T17:00")
		p.TanggalPelaksanaan = strptr("2025-06-01T09:00")
		w.UpdateData(p)

		err := w.Next()
		require.Error(t, err)
		assert.Equal(t, "pendaftaran harus ditutup sebelum tanggal pelaksanaan", err.Error())
		assert.Equal(t, StepEventInfo, w.Step())
	})

	t.Run("valid info advances through all steps, capped at 3", func(t *testing.T) {
		w := New(time.UTC)
		w.UpdateData(validEventInfo())

		require.NoError(t, w.Next())
		assert.Equal(t, StepSponsor, w.Step())
		require.NoError(t, w.Next())
		assert.Equal(t, StepAssessment, w.Step())
		require.NoError(t, w.Next())
		assert.Equal(t, StepAssessment, w.Step(), "step must not exceed the last step")
	})
}

func TestWizard_Previous(t *testing.T) {
	w := New(time.UTC)
	w.Previous()
	assert.Equal(t, StepEventInfo, w.Step(), "step must not go below 1")

	w.UpdateData(validEventInfo())
	require.NoError(t, w.Next())
	w.Previous()
	assert.Equal(t, StepEventInfo, w.Step())
}

func TestWizard_UpdateData(t *testing.T) {
	w := New(time.UTC)
	w.UpdateData(Patch{Nama: strptr("Event A"), Semester: strptr("Ganjil")})
	w.UpdateData(Patch{Lokasi: strptr("Aula")})

	d := w.Data()
	assert.Equal(t, "Event A", d.Nama, "unspecified fields must be preserved")
	assert.Equal(t, "Ganjil", d.Semester)
	assert.Equal(t, "Aula", d.Lokasi)
}

func TestWizard_ValidateEventInfo(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Patch)
		wantErr   string
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(p *Patch) {},
		},
		{
			name:      "missing nama",
			mutate:    func(p *Patch) { p.Nama = strptr("") },
			wantErr:   "nama event wajib diisi",
			wantField: "nama",
		},
		{
			name:      "missing semester",
			mutate:    func(p *Patch) { p.Semester = strptr("  ") },
			wantErr:   "semester wajib diisi",
			wantField: "semester",
		},
		{
			name:      "missing tahun ajaran",
			mutate:    func(p *Patch) { p.TahunAjaran = strptr("") },
			wantErr:   "tahun ajaran wajib diisi",
			wantField: "tahunAjaran",
		},
		{
			name:      "unparseable date",
			mutate:    func(p *Patch) { p.MulaiPendaftaran = strptr("besok pagi") },
			wantErr:   "waktu mulai pendaftaran tidak valid",
			wantField: "mulaiPendaftaran",
		},
		{
			name:      "empty date",
			mutate:    func(p *Patch) { p.TanggalPelaksanaan = strptr("") },
			wantErr:   "tanggal pelaksanaan tidak valid",
			wantField: "tanggalPelaksanaan",
		},
		{
			name: "registration opens after it closes",
			mutate: func(p *Patch) {
				p.MulaiPendaftaran = strptr("2025-05-21T08:00")
				p.AkhirPendaftaran = strptr("2025-05-20T17:00")
			},
			wantErr:   "waktu mulai pendaftaran harus sebelum waktu akhir pendaftaran",
			wantField: "mulaiPendaftaran",
		},
		{
			name: "registration closes exactly at opening time",
			mutate: func(p *Patch) {
				p.MulaiPendaftaran = strptr("2025-05-20T17:00")
				p.AkhirPendaftaran = strptr("2025-05-20T17:00")
			},
			wantErr:   "waktu mulai pendaftaran harus sebelum waktu akhir pendaftaran",
			wantField: "mulaiPendaftaran",
		},
		{
			name: "registration closes after the event date",
			mutate: func(p *Patch) {
				p.AkhirPendaftaran = strptr("2025-06-10T17:00")
				p.TanggalPelaksanaan = strptr("2025-06-01T09:00")
			},
			wantErr:   "pendaftaran harus ditutup sebelum tanggal pelaksanaan",
			wantField: "akhirPendaftaran",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(time.UTC)
			p := validEventInfo()
			tt.mutate(&p)
			w.UpdateData(p)

			err := w.ValidateEventInfo()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, StepEventInfo, w.Step())

			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "expected *core.ValidationError, got %T", err)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			assert.Equal(t, tt.wantErr, vErr.Fields[0].Error)
		})
	}
}

func TestWizard_ValidateAssessment(t *testing.T) {
	tests := []struct {
		name      string
		kategori  []Kategori
		wantErr   bool
		wantInMsg string
	}{
		{
			name:    "no categories",
			wantErr: true,
		},
		{
			name:     "weights sum to 100",
			kategori: []Kategori{kategoriWithWeights("Inovasi", 40, 30, 30)},
		},
		{
			name:      "weights sum to 90",
			kategori:  []Kategori{kategoriWithWeights("Inovasi", 40, 30, 20)},
			wantErr:   true,
			wantInMsg: `"Inovasi"`,
		},
		{
			name:      "weights sum to 110",
			kategori:  []Kategori{kategoriWithWeights("Pemasaran", 40, 40, 30)},
			wantErr:   true,
			wantInMsg: `"Pemasaran"`,
		},
		{
			name: "second category at fault is named",
			kategori: []Kategori{
				kategoriWithWeights("Inovasi", 50, 50),
				kategoriWithWeights("Keuangan", 60, 60),
			},
			wantErr:   true,
			wantInMsg: `"Keuangan"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(time.UTC)
			w.UpdateData(Patch{KategoriPenilaian: tt.kategori})

			err := w.ValidateAssessment()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantInMsg != "" {
				assert.Contains(t, err.Error(), tt.wantInMsg)
			}

			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "expected *core.ValidationError, got %T", err)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, "kategoriPenilaian", vErr.Fields[0].Field)
		})
	}
}

func TestWizard_PrepareForSubmit(t *testing.T) {
	t.Run("converts local times to UTC ISO strings", func(t *testing.T) {
		w := New(time.FixedZone("WITA", 8*60*60)) // UTC+8
		p := validEventInfo()
		p.MulaiPendaftaran = strptr("2025-02-01T09:00")
		p.AkhirPendaftaran = strptr("2025-02-20T09:00")
		p.TanggalPelaksanaan = strptr("2025-03-01T09:00")
		w.UpdateData(p)

		out, err := w.PrepareForSubmit()
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01T01:00:00.000Z", out.TanggalPelaksanaan)
		assert.Equal(t, "2025-02-01T01:00:00.000Z", out.MulaiPendaftaran)
		assert.Equal(t, "2025-02-20T01:00:00.000Z", out.AkhirPendaftaran)
		// everything else passes through unchanged
		assert.Equal(t, "Pasar Wirausaha Mahasiswa", out.Nama)
		assert.Equal(t, "2025/2026", out.TahunAjaran)
	})

	t.Run("unparseable date fails", func(t *testing.T) {
		w := New(time.UTC)
		p := validEventInfo()
		p.AkhirPendaftaran = strptr("nanti")
		w.UpdateData(p)

		_, err := w.PrepareForSubmit()
		assert.Error(t, err)
	})
}

func TestWizard_Reset(t *testing.T) {
	w := New(time.UTC)
	w.UpdateData(validEventInfo())
	w.AddSponsor("Bank Kampus", "logo.png")
	w.AddKategori("Inovasi", "", nil, []Kriteria{{Nama: "Orisinalitas", Bobot: 100}})
	require.NoError(t, w.Next())

	w.Reset()

	assert.Equal(t, StepEventInfo, w.Step())
	d := w.Data()
	assert.Empty(t, d.Nama)
	assert.Empty(t, d.Sponsor)
	assert.Empty(t, d.KategoriPenilaian)
}

func TestWizard_SponsorAndKategoriRows(t *testing.T) {
	w := New(time.UTC)

	sp1 := w.AddSponsor(" Bank Kampus ", "bank.png")
	sp2 := w.AddSponsor("Koperasi", "kop.png")
	assert.NotEmpty(t, sp1.ID)
	assert.NotEqual(t, sp1.ID, sp2.ID)
	assert.Equal(t, "Bank Kampus", sp1.Nama)

	w.RemoveSponsor(sp1.ID)
	d := w.Data()
	require.Len(t, d.Sponsor, 1)
	assert.Equal(t, "Koperasi", d.Sponsor[0].Nama)

	kat := w.AddKategori("Inovasi", "Aspek inovasi produk", []string{"dosen-1"}, []Kriteria{{Nama: "Orisinalitas", Bobot: 100}})
	assert.NotEmpty(t, kat.ID)
	w.RemoveKategori(kat.ID)
	assert.Empty(t, w.Data().KategoriPenilaian)
}

func TestWizard_Restore(t *testing.T) {
	w := New(time.UTC)
	w.Restore(7, FormData{Nama: "Event"})
	assert.Equal(t, StepAssessment, w.Step(), "restored step is clamped")
	assert.Equal(t, "Event", w.Data().Nama)

	w.Restore(0, FormData{})
	assert.Equal(t, StepEventInfo, w.Step())
}
