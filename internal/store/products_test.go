package store

import (
	"context"
	"testing"

	"juiceshop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductsFetchAll(t *testing.T) {
	tb := newTestBackend(t)
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	assert.Len(t, products.Products(), 8)
	assert.False(t, products.Loading())
	assert.Empty(t, products.Err())
}

func TestProductsSearchFiltersByName(t *testing.T) {
	tb := newTestBackend(t)
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.Search(ctx, "mango"))
	list := products.Products()
	require.Len(t, list, 1)
	assert.Equal(t, "Mango Smoothie", list[0].Name)
	assert.Equal(t, "mango", products.SearchTerm())
}

func TestProductsBlankSearchFallsBackToFetchAll(t *testing.T) {
	tb := newTestBackend(t)
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.Search(ctx, "   "))
	assert.Len(t, products.Products(), 8, "blank term means the full catalog, not a search for empty string")
	assert.Empty(t, products.SearchTerm())
}

func TestProductsFetchByIDLeavesListAlone(t *testing.T) {
	tb := newTestBackend(t)
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	require.NoError(t, products.FetchByID(ctx, 3))

	selected := products.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, 3, selected.ID)
	assert.Len(t, products.Products(), 8)
}

func TestProductsCreateAppendsServerEntity(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "maria@example.com")
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	before := len(products.Products())

	created, err := products.Create(ctx, models.ProductInput{
		Name:        "Kiwi Smoothie",
		Price:       3.49,
		Description: "Green and tangy",
		Ingredients: "100% kiwi",
		Stock:       40,
	})
	require.NoError(t, err)

	list := products.Products()
	assert.Len(t, list, before+1)
	assert.Equal(t, 9, created.ID, "the id comes from the server, never guessed locally")
	assert.Equal(t, created.ID, list[len(list)-1].ID)
}

func TestProductsCreateRequiresAdmin(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "juan@example.com")
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	before := products.Products()

	_, err := products.Create(ctx, models.ProductInput{Name: "Forbidden Juice", Price: 1})
	require.Error(t, err)
	assert.Equal(t, before, products.Products())
	assert.Equal(t, "Insufficient permissions", products.Err())
}

func TestProductsUpdateReplacesListEntryAndSelected(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "maria@example.com")
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))

	updated, err := products.Update(ctx, 2, models.ProductInput{
		Name:        "Banana Shake",
		Price:       2.29,
		Description: "Now with oat milk",
		Stock:       180,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ID)

	var inList *models.Product
	for _, p := range products.Products() {
		if p.ID == 2 {
			entry := p
			inList = &entry
			break
		}
	}
	require.NotNil(t, inList)
	assert.Equal(t, "Banana Shake", inList.Name)

	selected := products.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "Banana Shake", selected.Name)
}

func TestProductsDeleteRemovesListEntry(t *testing.T) {
	tb := newTestBackend(t)
	tb.login(t, "maria@example.com")
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	require.NoError(t, products.Delete(ctx, 5))

	for _, p := range products.Products() {
		assert.NotEqual(t, 5, p.ID)
	}
	assert.Len(t, products.Products(), 7)
}

func TestProductsFetchFailureKeepsPreviousList(t *testing.T) {
	tb := newTestBackend(t)
	products := NewProducts(tb.client, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, products.FetchAll(ctx))
	before := products.Products()
	require.NotEmpty(t, before)

	tb.server.Close()
	require.Error(t, products.FetchAll(ctx))
	assert.Equal(t, before, products.Products(), "a failed refresh keeps showing the last good catalog")
	assert.NotEmpty(t, products.Err())
	assert.False(t, products.Loading())
}
