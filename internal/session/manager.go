package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"juiceshop/internal/api"
	"juiceshop/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// CartStore is the slice of the cart contract the session manager
// coordinates: reload on login/restore, local reset on logout.
type CartStore interface {
	Load(ctx context.Context) error
	Reset()
}

// FavoriteStore is the favorites counterpart of CartStore.
type FavoriteStore interface {
	Load(ctx context.Context) error
	Clear()
}

// Manager owns the authentication lifecycle: the current user, the bearer
// token, and the persisted copy of both. It is the only component that
// writes session state, and the only one that touches the API client's
// auth header.
type Manager struct {
	api       *api.Client
	storage   Storage
	cart      CartStore
	favorites FavoriteStore
	logger    zerolog.Logger

	mu      sync.RWMutex
	user    *models.User
	token   string
	loading bool
	lastErr string
}

func NewManager(client *api.Client, storage Storage, cart CartStore, favorites FavoriteStore, logger zerolog.Logger) *Manager {
	m := &Manager{
		api:       client,
		storage:   storage,
		cart:      cart,
		favorites: favorites,
		logger:    logger,
	}
	// A 401 under an in-flight request means the server no longer honors
	// the token; drop the session. Logout is idempotent, so overlapping
	// 401s are harmless.
	client.OnUnauthorized(m.Logout)
	return m
}

// Restore adopts the persisted session, if any. A half-present pair, a
// user blob that fails to parse, or a token already past its expiry all
// count as corruption: the persisted value is cleared and the session
// comes up anonymous. Returns whether a session was restored.
func (m *Manager) Restore(ctx context.Context) bool {
	m.setLoading()
	defer m.clearLoading()

	rawUser, haveUser := m.storage.Get(userKey)
	rawToken, haveToken := m.storage.Get(tokenKey)
	if !haveUser || !haveToken {
		if haveUser || haveToken {
			m.logger.Warn().Msg("Partial session in storage, clearing")
		}
		m.clearPersisted()
		return false
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn().Err(err).Msg("Stored user is not valid JSON, clearing session")
		m.clearPersisted()
		return false
	}

	if tokenExpired(rawToken) {
		m.logger.Info().Str("email", user.Email).Msg("Stored token expired, clearing session")
		m.clearPersisted()
		return false
	}

	m.adopt(&user, rawToken)

	// Dependent reloads must not fail the restore; their stores record
	// their own errors.
	if err := m.cart.Load(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Cart reload after restore failed")
	}
	if err := m.favorites.Load(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Favorites reload after restore failed")
	}

	// The reloads can invalidate the session underneath us: a token the
	// server no longer honors dies with a 401 and the forced logout.
	if !m.IsAuthenticated() {
		m.logger.Warn().Str("email", user.Email).Msg("Restored token rejected by the server")
		return false
	}

	m.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Session restored")
	return true
}

// Login authenticates against the backend. On success the session is
// replaced (also when a previous session was active), persisted, and both
// the cart and favorites are freshly loaded before Login returns. On
// failure the prior session is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	return m.authenticate(ctx, "/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, "login failed")
}

// Register creates an account and establishes the session in one step:
// the registration response carries a token, so no separate login follows.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return m.authenticate(ctx, "/auth/register", models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, "registration failed")
}

func (m *Manager) authenticate(ctx context.Context, path string, body any, fallback string) (*models.User, error) {
	m.setLoading()
	defer m.clearLoading()

	var resp models.AuthResponse
	if err := m.api.Post(ctx, path, body, &resp); err != nil {
		m.setError(errorMessage(err, fallback))
		return nil, err
	}

	user := resp.User
	user.Password = ""

	m.persist(&user, resp.Token)
	m.adopt(&user, resp.Token)

	if err := m.cart.Load(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Cart reload after authentication failed")
	}
	if err := m.favorites.Load(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Favorites reload after authentication failed")
	}

	m.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Session established")
	return &user, nil
}

// Logout clears the in-memory and persisted session, removes the bearer
// header, and resets the dependent stores. No network call is involved,
// and calling it on an anonymous session is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.user != nil
	m.user = nil
	m.token = ""
	m.lastErr = ""
	m.mu.Unlock()

	m.clearPersisted()
	m.api.ClearToken()
	m.cart.Reset()
	m.favorites.Clear()

	if wasAuthenticated {
		m.logger.Info().Msg("Session closed")
	}
}

// Profile fetches the authenticated user's profile from the backend.
func (m *Manager) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := m.api.Get(ctx, "/users/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.IsAdmin()
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) adopt(user *models.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.mu.Unlock()

	m.api.SetToken(token)
}

func (m *Manager) persist(user *models.User, token string) {
	raw, err := json.Marshal(user)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to encode user for storage")
		return
	}
	if err := m.storage.Set(userKey, string(raw)); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist user")
	}
	if err := m.storage.Set(tokenKey, token); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist token")
	}
}

func (m *Manager) clearPersisted() {
	if err := m.storage.Delete(userKey); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear stored user")
	}
	if err := m.storage.Delete(tokenKey); err != nil {
		m.logger.Error().Err(err).Msg("Failed to clear stored token")
	}
}

func (m *Manager) setLoading() {
	m.mu.Lock()
	m.loading = true
	m.lastErr = ""
	m.mu.Unlock()
}

func (m *Manager) clearLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

// tokenExpired reports whether the JWT carries an exp claim in the past.
// The client has no signing key, so the claims are read unverified; the
// server remains the authority and will reject a forged token anyway.
func tokenExpired(raw string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
