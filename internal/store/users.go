package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"juiceshop/internal/api"
	"juiceshop/internal/models"

	"github.com/rs/zerolog"
)

// Users is the user catalog, structurally the same contract as Products,
// plus a client-side role filter applied as a pure view over the loaded
// list (changing it never triggers a fetch).
type Users struct {
	api    *api.Client
	logger zerolog.Logger

	opMu sync.Mutex

	mu       sync.RWMutex
	users    []models.User
	selected *models.User
	filter   models.RoleFilter
	loading  bool
	lastErr  string
}

func NewUsers(client *api.Client, logger zerolog.Logger) *Users {
	return &Users{
		api:    client,
		logger: logger,
		filter: models.FilterAll,
	}
}

// FetchAll replaces the local list with the server's full user list.
func (u *Users) FetchAll(ctx context.Context) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	var users []models.User
	if err := u.api.Get(ctx, "/users", nil, &users); err != nil {
		u.fail(err, "failed to fetch users")
		return err
	}

	u.mu.Lock()
	u.users = users
	u.loading = false
	u.mu.Unlock()
	return nil
}

// FetchByID populates the selected-user slot; the list is untouched.
func (u *Users) FetchByID(ctx context.Context, id int) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	var user models.User
	if err := u.api.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		u.fail(err, "failed to fetch user")
		return err
	}

	u.mu.Lock()
	u.selected = &user
	u.loading = false
	u.mu.Unlock()
	return nil
}

// FetchByEmail looks a user up by email into the selected slot.
func (u *Users) FetchByEmail(ctx context.Context, email string) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	var user models.User
	if err := u.api.Get(ctx, "/users/email/"+url.PathEscape(email), nil, &user); err != nil {
		u.fail(err, "failed to fetch user by email")
		return err
	}

	u.mu.Lock()
	u.selected = &user
	u.loading = false
	u.mu.Unlock()
	return nil
}

// Create posts a new user and appends the confirmed entity, with its
// server-assigned id, to the local list.
func (u *Users) Create(ctx context.Context, input models.User) (*models.User, error) {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	var created models.User
	if err := u.api.Post(ctx, "/users", input, &created); err != nil {
		u.fail(err, "failed to create user")
		return nil, err
	}

	u.mu.Lock()
	u.users = append(u.users, created)
	u.loading = false
	u.mu.Unlock()

	u.logger.Info().Int("user_id", created.ID).Str("email", created.Email).Msg("User created")
	return &created, nil
}

// Update puts the new data and replaces both the matching list entry and
// the selected slot with the server's confirmed entity.
func (u *Users) Update(ctx context.Context, id int, input models.User) (*models.User, error) {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	var updated models.User
	if err := u.api.Put(ctx, fmt.Sprintf("/users/%d", id), input, &updated); err != nil {
		u.fail(err, "failed to update user")
		return nil, err
	}

	u.mu.Lock()
	for i := range u.users {
		if u.users[i].ID == id {
			u.users[i] = updated
			break
		}
	}
	u.selected = &updated
	u.loading = false
	u.mu.Unlock()

	u.logger.Info().Int("user_id", id).Msg("User updated")
	return &updated, nil
}

// Delete removes the user server-side, then drops the matching entry from
// the local list.
func (u *Users) Delete(ctx context.Context, id int) error {
	u.opMu.Lock()
	defer u.opMu.Unlock()

	u.begin()
	if err := u.api.Delete(ctx, fmt.Sprintf("/users/%d", id)); err != nil {
		u.fail(err, "failed to delete user")
		return err
	}

	u.mu.Lock()
	kept := u.users[:0]
	for _, user := range u.users {
		if user.ID != id {
			kept = append(kept, user)
		}
	}
	u.users = kept
	u.loading = false
	u.mu.Unlock()

	u.logger.Info().Int("user_id", id).Msg("User deleted")
	return nil
}

// SetRoleFilter changes the view filter. Pure local state.
func (u *Users) SetRoleFilter(filter models.RoleFilter) {
	u.mu.Lock()
	u.filter = filter
	u.mu.Unlock()
}

func (u *Users) RoleFilter() models.RoleFilter {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.filter
}

// Users returns the loaded list with the role filter applied.
func (u *Users) Users() []models.User {
	u.mu.RLock()
	defer u.mu.RUnlock()

	users := make([]models.User, 0, len(u.users))
	for _, user := range u.users {
		if u.filter == models.FilterAll || user.Role == string(u.filter) {
			users = append(users, user)
		}
	}
	return users
}

func (u *Users) Selected() *models.User {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.selected == nil {
		return nil
	}
	user := *u.selected
	return &user
}

func (u *Users) Loading() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.loading
}

func (u *Users) Err() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lastErr
}

func (u *Users) begin() {
	u.mu.Lock()
	u.loading = true
	u.lastErr = ""
	u.mu.Unlock()
}

func (u *Users) fail(err error, fallback string) {
	msg := errorMessage(err, fallback)
	u.logger.Error().Err(err).Msg(fallback)

	u.mu.Lock()
	u.lastErr = msg
	u.loading = false
	u.mu.Unlock()
}
