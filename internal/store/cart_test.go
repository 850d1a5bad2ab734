package store

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItemReloadsFromServer(t *testing.T) {
	tb := newTestBackend(t)
	user := tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(1)
	require.NoError(t, err)

	require.NoError(t, cart.AddItem(ctx, product))
	require.NoError(t, cart.AddItem(ctx, product))

	lines := cart.Lines()
	require.Len(t, lines, 1, "same product must merge into one line")
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, product.ID, lines[0].Product.ID)

	// Local state matches what the server holds.
	assert.Equal(t, tb.backend.CartLines(user.ID), lines)
	assert.False(t, cart.Loading())
	assert.Empty(t, cart.Err())
}

func TestCartLoadIsIdempotent(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(3)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))

	require.NoError(t, cart.Load(ctx))
	first := cart.Lines()
	require.NoError(t, cart.Load(ctx))
	second := cart.Lines()

	assert.Equal(t, first, second)
}

func TestCartQuantityFloor(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(2)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))

	// Updating to zero removes the line rather than keeping quantity 0.
	require.NoError(t, cart.UpdateQuantity(ctx, product.ID, 0))
	assert.Empty(t, cart.Lines())

	require.NoError(t, cart.AddItem(ctx, product))
	require.NoError(t, cart.DecrementQuantity(ctx, product.ID))
	assert.Empty(t, cart.Lines(), "decrementing a quantity of 1 removes the line")
}

func TestCartIncrementAndDecrement(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(4)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))

	require.NoError(t, cart.IncrementQuantity(ctx, product.ID))
	require.NoError(t, cart.IncrementQuantity(ctx, product.ID))
	assert.Equal(t, 3, cart.ItemQuantity(product.ID))

	require.NoError(t, cart.DecrementQuantity(ctx, product.ID))
	assert.Equal(t, 2, cart.ItemQuantity(product.ID))

	// Products not present in the cart are a no-op, no request issued.
	require.NoError(t, cart.IncrementQuantity(ctx, 999))
	require.NoError(t, cart.DecrementQuantity(ctx, 999))
	assert.Equal(t, 2, cart.TotalItems())
}

func TestCartDerivedTotals(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	first, err := tb.backend.Product(1)
	require.NoError(t, err)
	second, err := tb.backend.Product(2)
	require.NoError(t, err)

	require.NoError(t, cart.AddItem(ctx, first))
	require.NoError(t, cart.AddItem(ctx, second))
	require.NoError(t, cart.UpdateQuantity(ctx, second.ID, 3))

	assert.Equal(t, 4, cart.TotalItems())
	assert.InDelta(t, first.Price+3*second.Price, cart.TotalPrice(), 0.001)
	assert.Equal(t, 1, cart.ItemQuantity(first.ID))
	assert.Equal(t, 0, cart.ItemQuantity(999))
}

func TestCartClearKnownPostState(t *testing.T) {
	tb := newTestBackend(t)
	user := tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(5)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))

	require.NoError(t, cart.Clear(ctx))
	assert.Empty(t, cart.Lines())
	assert.Empty(t, tb.backend.CartLines(user.ID))
}

func TestCartLoadFailureEmptiesLines(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(1)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))
	require.NotEmpty(t, cart.Lines())

	// An unauthenticated reload fails and must not leave stale lines.
	tb.client.ClearToken()
	require.Error(t, cart.Load(ctx))
	assert.Empty(t, cart.Lines())
	assert.NotEmpty(t, cart.Err())
	assert.False(t, cart.Loading())
}

func TestCartMutationFailureKeepsLines(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(1)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))
	before := cart.Lines()

	missing := product
	missing.ID = 999
	require.Error(t, cart.AddItem(ctx, missing))

	assert.Equal(t, before, cart.Lines(), "failed add must not touch existing lines")
	assert.Equal(t, "Product not found", cart.Err())
}

func TestCartErrorClearedOnNextOperation(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	missing, err := tb.backend.Product(1)
	require.NoError(t, err)
	missing.ID = 999
	require.Error(t, cart.AddItem(ctx, missing))
	require.NotEmpty(t, cart.Err())

	require.NoError(t, cart.Load(ctx))
	assert.Empty(t, cart.Err(), "a fresh operation clears the stale error")
}

func TestCartResetIsLocalOnly(t *testing.T) {
	tb := newTestBackend(t)
	user := tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(6)
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, product))

	cart.Reset()
	assert.Empty(t, cart.Lines())
	assert.NotEmpty(t, tb.backend.CartLines(user.ID), "reset must not call the server")
}

func TestCartSerializesConcurrentMutations(t *testing.T) {
	tb := newTestBackend(t)
	user := tb.login(t, "juan@example.com")
	cart := NewCart(tb.client, zerolog.Nop())
	ctx := context.Background()

	product, err := tb.backend.Product(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cart.AddItem(ctx, product))
		}()
	}
	wg.Wait()

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity, "all five adds must land, and the final reload must see them")
	assert.Equal(t, tb.backend.CartLines(user.ID), lines)
}
