package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"juiceshop/internal/api"
	"juiceshop/internal/models"

	"github.com/rs/zerolog"
)

// Products is the product catalog: the server's full or search-filtered
// list, a selected-product slot, and admin CRUD passthrough. Confirmed
// mutation responses are spliced into the local list; ids are always
// server-assigned.
type Products struct {
	api    *api.Client
	logger zerolog.Logger

	opMu sync.Mutex

	mu         sync.RWMutex
	products   []models.Product
	selected   *models.Product
	searchTerm string
	loading    bool
	lastErr    string
}

func NewProducts(client *api.Client, logger zerolog.Logger) *Products {
	return &Products{
		api:    client,
		logger: logger,
	}
}

// FetchAll replaces the local list with the server's full catalog. On
// failure the previous list is kept and the error recorded.
func (p *Products) FetchAll(ctx context.Context) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	return p.fetchAll(ctx)
}

func (p *Products) fetchAll(ctx context.Context) error {
	p.begin()

	var products []models.Product
	if err := p.api.Get(ctx, "/products", nil, &products); err != nil {
		p.fail(err, "failed to fetch products")
		return err
	}

	p.mu.Lock()
	p.products = products
	p.searchTerm = ""
	p.loading = false
	p.mu.Unlock()
	return nil
}

// FetchByID populates the selected-product slot; the list is untouched.
func (p *Products) FetchByID(ctx context.Context, id int) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.begin()
	var product models.Product
	if err := p.api.Get(ctx, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		p.fail(err, "failed to fetch product")
		return err
	}

	p.mu.Lock()
	p.selected = &product
	p.loading = false
	p.mu.Unlock()
	return nil
}

// Search replaces the list with the server's name-filtered results. A
// blank term means "show everything" and falls back to the full fetch.
func (p *Products) Search(ctx context.Context, term string) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	if strings.TrimSpace(term) == "" {
		return p.fetchAll(ctx)
	}

	p.begin()
	var products []models.Product
	if err := p.api.Get(ctx, "/products/search", map[string]string{"name": term}, &products); err != nil {
		p.fail(err, "failed to search products")
		return err
	}

	p.mu.Lock()
	p.products = products
	p.searchTerm = term
	p.loading = false
	p.mu.Unlock()
	return nil
}

// Create posts a new product and appends the confirmed entity, with its
// server-assigned id, to the local list.
func (p *Products) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.begin()
	var created models.Product
	if err := p.api.Post(ctx, "/products", input, &created); err != nil {
		p.fail(err, "failed to create product")
		return nil, err
	}

	p.mu.Lock()
	p.products = append(p.products, created)
	p.loading = false
	p.mu.Unlock()

	p.logger.Info().Int("product_id", created.ID).Str("name", created.Name).Msg("Product created")
	return &created, nil
}

// Update puts the new data and replaces both the matching list entry and
// the selected slot with the server's confirmed entity.
func (p *Products) Update(ctx context.Context, id int, input models.ProductInput) (*models.Product, error) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.begin()
	var updated models.Product
	if err := p.api.Put(ctx, fmt.Sprintf("/products/%d", id), input, &updated); err != nil {
		p.fail(err, "failed to update product")
		return nil, err
	}

	p.mu.Lock()
	for i := range p.products {
		if p.products[i].ID == id {
			p.products[i] = updated
			break
		}
	}
	p.selected = &updated
	p.loading = false
	p.mu.Unlock()

	p.logger.Info().Int("product_id", id).Msg("Product updated")
	return &updated, nil
}

// Delete removes the product server-side, then drops the matching entry
// from the local list.
func (p *Products) Delete(ctx context.Context, id int) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.begin()
	if err := p.api.Delete(ctx, fmt.Sprintf("/products/%d", id)); err != nil {
		p.fail(err, "failed to delete product")
		return err
	}

	p.mu.Lock()
	kept := p.products[:0]
	for _, product := range p.products {
		if product.ID != id {
			kept = append(kept, product)
		}
	}
	p.products = kept
	p.loading = false
	p.mu.Unlock()

	p.logger.Info().Int("product_id", id).Msg("Product deleted")
	return nil
}

func (p *Products) Products() []models.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()

	products := make([]models.Product, len(p.products))
	copy(products, p.products)
	return products
}

func (p *Products) Selected() *models.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.selected == nil {
		return nil
	}
	product := *p.selected
	return &product
}

func (p *Products) SearchTerm() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.searchTerm
}

func (p *Products) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Products) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Products) begin() {
	p.mu.Lock()
	p.loading = true
	p.lastErr = ""
	p.mu.Unlock()
}

func (p *Products) fail(err error, fallback string) {
	msg := errorMessage(err, fallback)
	p.logger.Error().Err(err).Msg(fallback)

	p.mu.Lock()
	p.lastErr = msg
	p.loading = false
	p.mu.Unlock()
}
