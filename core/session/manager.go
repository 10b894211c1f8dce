package session

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/storage/kvstore"
)

// tokenKey is the single durable key backing the session; its absence means
// "logged out".
const tokenKey = "token"

var (
	loginFailedText    = "Login gagal. Periksa kembali email dan password Anda."
	registerFailedText = "Registrasi gagal. Silakan coba lagi."
)

type (
	// API is the backend collaborator consumed by the Manager.
	API interface {
		Login(ctx context.Context, creds Credentials) (AuthPayload, error)
		Register(ctx context.Context, reg Registration) (AuthPayload, error)
		Logout(ctx context.Context, token string) error
		CurrentUser(ctx context.Context, token string) (User, error)
	}

	// Manager owns the authentication state for one logical session.
	// Operations are expected to be invoked serially; overlapping calls are
	// last-write-wins but never leave IsLoading stuck.
	Manager struct {
		mu     sync.Mutex
		state  State
		api    API
		tokens kvstore.Store
		log    core.Logger
	}

	// Result is returned by Login/Register so callers can route on the fresh
	// user instead of re-reading shared state.
	Result struct {
		OK   bool
		User *User
		Err  string
	}
)

func NewManager(api API, tokens kvstore.Store, log core.Logger) *Manager {
	return &Manager{api: api, tokens: tokens, log: log}
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state
	if m.state.User != nil {
		usr := *m.state.User
		st.User = &usr
	}
	return st
}

func (m *Manager) update(fn func(st *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
}

// Initialize restores the session from the persisted token. Intended to run
// once per session lifetime; callers guard against repeat calls.
func (m *Manager) Initialize(ctx context.Context) {
	tok, err := m.tokens.Get(ctx, tokenKey)
	if err != nil {
		if errors.Cause(err) != kvstore.ErrNotFound {
			m.log.Warn("reading persisted token", err)
		}
		m.update(func(st *State) { st.IsInitialized = true })
		return
	}
	m.validateToken(ctx, tok, true)
}

// GetCurrentUser re-validates the persisted token against the backend. Unlike
// Initialize it may be called repeatedly, e.g. to refresh the session.
func (m *Manager) GetCurrentUser(ctx context.Context) {
	tok, err := m.tokens.Get(ctx, tokenKey)
	if err != nil {
		if errors.Cause(err) != kvstore.ErrNotFound {
			m.log.Warn("reading persisted token", err)
		}
		m.update(func(st *State) {
			st.User = nil
			st.Token = ""
			st.IsAuthenticated = false
			st.IsInitialized = true
		})
		return
	}
	m.validateToken(ctx, tok, false)
}

func (m *Manager) validateToken(ctx context.Context, tok string, initializing bool) {
	m.update(func(st *State) { st.IsLoading = true })

	usr, err := m.api.CurrentUser(ctx, tok)
	if err != nil {
		// stale tokens are never retried silently
		if delErr := m.tokens.Delete(ctx, tokenKey); delErr != nil {
			m.log.Warn("clearing persisted token", delErr)
		}
		if !initializing {
			m.log.Info("session validation failed", err)
		}
		m.update(func(st *State) {
			st.User = nil
			st.Token = ""
			st.IsAuthenticated = false
			st.IsInitialized = true
			st.IsLoading = false
		})
		return
	}

	m.update(func(st *State) {
		st.User = &usr
		st.Token = tok
		st.IsAuthenticated = true
		st.IsInitialized = true
		st.IsLoading = false
		st.Err = ""
	})
}

// Login authenticates against the backend and persists the returned token.
func (m *Manager) Login(ctx context.Context, creds Credentials) Result {
	m.update(func(st *State) {
		st.IsLoading = true
		st.Err = ""
	})

	payload, err := m.api.Login(ctx, creds)
	if err != nil {
		return m.fail(err, loginFailedText)
	}
	return m.establish(ctx, payload)
}

// Register creates an account and logs the new user in; same contract as Login.
func (m *Manager) Register(ctx context.Context, reg Registration) Result {
	m.update(func(st *State) {
		st.IsLoading = true
		st.Err = ""
	})

	payload, err := m.api.Register(ctx, reg)
	if err != nil {
		return m.fail(err, registerFailedText)
	}
	return m.establish(ctx, payload)
}

func (m *Manager) fail(err error, fallback string) Result {
	msg := apiErrMessage(err, fallback)
	m.update(func(st *State) {
		st.Err = msg
		st.IsLoading = false
	})
	return Result{Err: msg}
}

func (m *Manager) establish(ctx context.Context, payload AuthPayload) Result {
	if err := m.tokens.Set(ctx, tokenKey, payload.Token); err != nil {
		// the session still works for this run; only the restore on next
		// start is lost
		m.log.Error("persisting token", err)
	}

	usr := payload.User
	m.update(func(st *State) {
		st.User = &usr
		st.Token = payload.Token
		st.IsAuthenticated = true
		st.IsLoading = false
		st.Err = ""
	})
	return Result{OK: true, User: &usr}
}

// Logout tears the session down. The backend call is best-effort; local state
// and the persisted token are cleared regardless, so Logout never fails from
// the caller's perspective.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	tok := m.state.Token
	m.mu.Unlock()

	if tok != "" {
		if err := m.api.Logout(ctx, tok); err != nil {
			m.log.Warn("logout request failed", err)
		}
	}
	if err := m.tokens.Delete(ctx, tokenKey); err != nil {
		m.log.Warn("clearing persisted token", err)
	}

	m.update(func(st *State) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		st.Err = ""
	})
}

func (m *Manager) ClearError() {
	m.update(func(st *State) { st.Err = "" })
}

// TokenExpiresWithin reports whether the session token's exp claim falls
// within d from now. The claim is read without signature verification; only
// the backend can actually reject the token.
func (m *Manager) TokenExpiresWithin(d time.Duration) bool {
	m.mu.Lock()
	tok := m.state.Token
	m.mu.Unlock()
	if tok == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tok, claims); err != nil {
		return true // opaque or malformed: let the backend decide
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false // no exp claim: nothing to anticipate
	}
	return time.Until(time.Unix(int64(exp), 0)) < d
}

// apiMessenger is implemented by backend errors that carry a server-provided
// message.
type apiMessenger interface {
	APIMessage() string
}

func apiErrMessage(err error, fallback string) string {
	if m, ok := errors.Cause(err).(apiMessenger); ok {
		if msg := m.APIMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
