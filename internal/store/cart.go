package store

import (
	"context"
	"fmt"
	"sync"

	"juiceshop/internal/api"
	"juiceshop/internal/models"

	"github.com/rs/zerolog"
)

// Cart mirrors the session's server-side cart. The server stays the
// source of truth: every mutation is confirmed there and followed by a
// full reload instead of patching the local lines, so concurrent changes
// from other clients of the same session are never papered over. The one
// exception is Clear, whose post-state is already known exactly.
type Cart struct {
	api    *api.Client
	logger zerolog.Logger

	// opMu serializes whole backend operations so that two quick
	// mutations cannot have their reloads race each other.
	opMu sync.Mutex

	mu      sync.RWMutex
	lines   []models.CartLine
	loading bool
	lastErr string
}

func NewCart(client *api.Client, logger zerolog.Logger) *Cart {
	return &Cart{
		api:    client,
		logger: logger,
	}
}

// Load replaces the local lines wholesale with the server's cart. On
// failure the lines are emptied: an empty cart is safer than a stale one.
func (c *Cart) Load(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.load(ctx)
}

func (c *Cart) load(ctx context.Context) error {
	c.begin()

	var lines []models.CartLine
	if err := c.api.Get(ctx, "/cart", nil, &lines); err != nil {
		c.fail(err, "failed to load cart", true)
		return err
	}

	c.mu.Lock()
	c.lines = lines
	c.loading = false
	c.mu.Unlock()
	return nil
}

// AddItem asks the server to add one unit of product, then reloads. The
// local lines are never patched optimistically; on failure they stay as
// they were.
func (c *Cart) AddItem(ctx context.Context, product models.Product) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.begin()
	req := models.AddToCartRequest{ProductID: product.ID, Quantity: 1}
	if err := c.api.Post(ctx, "/cart", req, nil); err != nil {
		c.fail(err, "failed to add product to cart", false)
		return err
	}

	c.logger.Debug().Int("product_id", product.ID).Msg("Product added to cart")
	return c.load(ctx)
}

// RemoveItem asks the server to drop the product's line, then reloads.
func (c *Cart) RemoveItem(ctx context.Context, productID int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.removeItem(ctx, productID)
}

func (c *Cart) removeItem(ctx context.Context, productID int) error {
	c.begin()
	if err := c.api.Delete(ctx, fmt.Sprintf("/cart/%d", productID)); err != nil {
		c.fail(err, "failed to remove product from cart", false)
		return err
	}

	c.logger.Debug().Int("product_id", productID).Msg("Product removed from cart")
	return c.load(ctx)
}

// UpdateQuantity sets the server-side quantity for the product. A
// quantity of zero or less removes the line instead: no line ever rests
// at a non-positive quantity.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.updateQuantity(ctx, productID, quantity)
}

func (c *Cart) updateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return c.removeItem(ctx, productID)
	}

	c.begin()
	req := models.UpdateQuantityRequest{Quantity: quantity}
	if err := c.api.Put(ctx, fmt.Sprintf("/cart/%d", productID), req, nil); err != nil {
		c.fail(err, "failed to update cart quantity", false)
		return err
	}

	return c.load(ctx)
}

// IncrementQuantity bumps the product's quantity by one. A product not in
// the cart is a no-op.
func (c *Cart) IncrementQuantity(ctx context.Context, productID int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	quantity := c.ItemQuantity(productID)
	if quantity == 0 {
		return nil
	}
	return c.updateQuantity(ctx, productID, quantity+1)
}

// DecrementQuantity lowers the product's quantity by one, removing the
// line when it reaches zero. A product not in the cart is a no-op.
func (c *Cart) DecrementQuantity(ctx context.Context, productID int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	quantity := c.ItemQuantity(productID)
	if quantity == 0 {
		return nil
	}
	return c.updateQuantity(ctx, productID, quantity-1)
}

// Clear empties the cart server-side. The post-state is known, so the
// local lines are set to empty directly instead of reloading.
func (c *Cart) Clear(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.begin()
	if err := c.api.Delete(ctx, "/cart"); err != nil {
		c.fail(err, "failed to clear cart", false)
		return err
	}

	c.mu.Lock()
	c.lines = nil
	c.loading = false
	c.mu.Unlock()
	return nil
}

// Reset drops the local lines without any server call. The session
// manager uses it on logout.
func (c *Cart) Reset() {
	c.mu.Lock()
	c.lines = nil
	c.loading = false
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Cart) Lines() []models.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := make([]models.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0.0
	for _, line := range c.lines {
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

func (c *Cart) ItemQuantity(productID int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, line := range c.lines {
		if line.Product.ID == productID {
			return line.Quantity
		}
	}
	return 0
}

func (c *Cart) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Cart) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Cart) begin() {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Cart) fail(err error, fallback string, clearLines bool) {
	msg := errorMessage(err, fallback)
	c.logger.Error().Err(err).Msg(fallback)

	c.mu.Lock()
	c.lastErr = msg
	c.loading = false
	if clearLines {
		c.lines = nil
	}
	c.mu.Unlock()
}
