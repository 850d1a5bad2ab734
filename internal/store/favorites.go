package store

import (
	"context"
	"fmt"
	"sync"

	"juiceshop/internal/api"
	"juiceshop/internal/models"

	"github.com/rs/zerolog"
)

// Favorites mirrors the session's server-side favorite set with the same
// reconciliation discipline as Cart: mutations are server-confirmed and
// followed by a full reload.
type Favorites struct {
	api    *api.Client
	logger zerolog.Logger

	opMu sync.Mutex

	mu       sync.RWMutex
	products []models.Product
	loading  bool
	lastErr  string
}

func NewFavorites(client *api.Client, logger zerolog.Logger) *Favorites {
	return &Favorites{
		api:    client,
		logger: logger,
	}
}

// Load replaces the local set with the server's. On failure the set is
// emptied rather than left stale.
func (f *Favorites) Load(ctx context.Context) error {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	return f.load(ctx)
}

func (f *Favorites) load(ctx context.Context) error {
	f.begin()

	var products []models.Product
	if err := f.api.Get(ctx, "/users/favorites", nil, &products); err != nil {
		msg := errorMessage(err, "failed to load favorites")
		f.logger.Error().Err(err).Msg("Failed to load favorites")

		f.mu.Lock()
		f.lastErr = msg
		f.loading = false
		f.products = nil
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	f.products = products
	f.loading = false
	f.mu.Unlock()
	return nil
}

// Add marks the product as favorite server-side, then reloads. On failure
// the local set is untouched and the error is returned so the caller can
// react immediately.
func (f *Favorites) Add(ctx context.Context, productID int) error {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	f.begin()
	if err := f.api.Post(ctx, fmt.Sprintf("/users/favorites/%d", productID), nil, nil); err != nil {
		f.fail(err, "failed to add favorite")
		return err
	}

	f.logger.Debug().Int("product_id", productID).Msg("Favorite added")
	return f.load(ctx)
}

// Remove unmarks the product server-side, then reloads. Same error
// contract as Add.
func (f *Favorites) Remove(ctx context.Context, productID int) error {
	f.opMu.Lock()
	defer f.opMu.Unlock()

	f.begin()
	if err := f.api.Delete(ctx, fmt.Sprintf("/users/favorites/%d", productID)); err != nil {
		f.fail(err, "failed to remove favorite")
		return err
	}

	f.logger.Debug().Int("product_id", productID).Msg("Favorite removed")
	return f.load(ctx)
}

// IsFavorite checks membership against the local cache only.
func (f *Favorites) IsFavorite(productID int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, p := range f.products {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Clear drops the local set without any server call. The session manager
// uses it on logout.
func (f *Favorites) Clear() {
	f.mu.Lock()
	f.products = nil
	f.loading = false
	f.lastErr = ""
	f.mu.Unlock()
}

func (f *Favorites) Products() []models.Product {
	f.mu.RLock()
	defer f.mu.RUnlock()

	products := make([]models.Product, len(f.products))
	copy(products, f.products)
	return products
}

func (f *Favorites) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *Favorites) Err() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

func (f *Favorites) begin() {
	f.mu.Lock()
	f.loading = true
	f.lastErr = ""
	f.mu.Unlock()
}

func (f *Favorites) fail(err error, fallback string) {
	msg := errorMessage(err, fallback)
	f.logger.Error().Err(err).Msg(fallback)

	f.mu.Lock()
	f.lastErr = msg
	f.loading = false
	f.mu.Unlock()
}
