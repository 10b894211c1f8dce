package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uptpik/pikweb/core/session"
	backendsvc "github.com/uptpik/pikweb/services/backend"
	logsvc "github.com/uptpik/pikweb/services/logger"
	"github.com/uptpik/pikweb/storage/kvstore"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	user := session.User{ID: "u1", Nama: "Budi", Email: "budi@kampus.ac.id", Role: session.RoleUser}
	respond := func(w http.ResponseWriter, status int, body map[string]interface{}) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed := r.Header.Get("Authorization") == "Bearer tok-1"
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
			var creds session.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Email != user.Email || creds.Password != "rahasia-123" {
				respond(w, http.StatusUnauthorized, map[string]interface{}{"message": "Email atau password salah"})
				return
			}
			respond(w, http.StatusOK, map[string]interface{}{"data": session.AuthPayload{User: user, Token: "tok-1"}})
		case r.Method == http.MethodGet && r.URL.Path == "/auth/me":
			if !authed {
				respond(w, http.StatusUnauthorized, map[string]interface{}{"message": "Sesi berakhir"})
				return
			}
			respond(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"user": user}})
		case r.Method == http.MethodPost && r.URL.Path == "/auth/logout":
			respond(w, http.StatusOK, map[string]interface{}{})
		case r.Method == http.MethodGet && r.URL.Path == "/marketplace/events":
			if !authed {
				respond(w, http.StatusUnauthorized, map[string]interface{}{"message": "Sesi berakhir"})
				return
			}
			respond(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"events": []map[string]interface{}{
				{"id": "e1", "nama": "Bazar Kampus", "semester": "Ganjil", "tahunAjaran": "2025/2026", "tanggalPelaksanaan": "2025-06-01T02:00:00.000Z"},
			}}})
		default:
			respond(w, http.StatusNotFound, map[string]interface{}{"message": "not found"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cliEnv struct {
	credsPath string
	api       *backendsvc.Client
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{
		credsPath: filepath.Join(t.TempDir(), "pikctl", "credentials.json"),
		api:       backendsvc.NewClientWith(fakeBackend(t).URL, 5*time.Second, 100),
	}
}

// newCLI builds a fresh commandLine the way main() does, sharing the
// credentials file so sessions persist across invocations.
func (env *cliEnv) newCLI() (*commandLine, *bytes.Buffer) {
	tokens := kvstore.NewFile(env.credsPath)
	logger := logsvc.NewConsoleLogger(log.New(new(bytes.Buffer), "", 0))
	logger.Enable(false)

	out := new(bytes.Buffer)
	return &commandLine{
		mgr: session.NewManager(env.api, tokens, logger),
		api: env.api,
		out: out,
	}, out
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func TestCLI_Help(t *testing.T) {
	env := setupCLI(t)

	for _, args := range [][]string{
		{"pikctl"},
		{"pikctl", "frobnicate"},
	} {
		cli, out := env.newCLI()
		err := cli.run(args)
		assert.ErrorIs(t, err, errHelp, strings.Join(args, " "))
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestCLI_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := setupCLI(t)
		mockPassword(t, "rahasia-123")

		cli, out := env.newCLI()
		require.NoError(t, cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"}))
		assert.Contains(t, out.String(), "Logged in as Budi <budi@kampus.ac.id> (USER)")
	})

	t.Run("wrong password surfaces the server message", func(t *testing.T) {
		env := setupCLI(t)
		mockPassword(t, "salah")

		cli, _ := env.newCLI()
		err := cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"})
		require.Error(t, err)
		assert.Equal(t, "Email atau password salah", err.Error())
	})

	t.Run("missing email prints usage", func(t *testing.T) {
		env := setupCLI(t)
		cli, _ := env.newCLI()
		assert.ErrorIs(t, cli.run([]string{"pikctl", "login"}), errHelp)
	})

	t.Run("empty password prints usage", func(t *testing.T) {
		env := setupCLI(t)
		mockPassword(t, "")

		cli, _ := env.newCLI()
		assert.ErrorIs(t, cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"}), errHelp)
	})
}

func TestCLI_Whoami(t *testing.T) {
	env := setupCLI(t)

	cli, out := env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "whoami"}))
	assert.Contains(t, out.String(), "Not logged in.")

	mockPassword(t, "rahasia-123")
	cli, _ = env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"}))

	// a fresh invocation restores the session from the credentials file
	cli, out = env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "whoami"}))
	assert.Contains(t, out.String(), "Budi <budi@kampus.ac.id> (USER)")
}

func TestCLI_Events(t *testing.T) {
	env := setupCLI(t)

	cli, _ := env.newCLI()
	err := cli.run([]string{"pikctl", "events"})
	require.Error(t, err)
	assert.Equal(t, "not logged in", err.Error())

	mockPassword(t, "rahasia-123")
	cli, _ = env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"}))

	cli, out := env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "events", "-search", "bazar"}))
	assert.Contains(t, out.String(), "Bazar Kampus")
	assert.Contains(t, out.String(), "Ganjil 2025/2026")
}

func TestCLI_Logout(t *testing.T) {
	env := setupCLI(t)
	mockPassword(t, "rahasia-123")

	cli, _ := env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "login", "-email", "budi@kampus.ac.id"}))

	cli, out := env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "logout"}))
	assert.Contains(t, out.String(), "Logged out.")

	cli, out = env.newCLI()
	require.NoError(t, cli.run([]string{"pikctl", "whoami"}))
	assert.Contains(t, out.String(), "Not logged in.")
}
