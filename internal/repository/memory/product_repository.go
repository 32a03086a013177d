// Package memory keeps catalog products in process memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
)

// ProductRepository implements repository.ProductRepository with a map guarded by a mutex.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	lastID   int64
}

// NewProductRepository creates a repository holding the given products.
// New ids continue after the highest seeded id.
func NewProductRepository(seed ...model.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[int64]model.Product, len(seed))}
	for _, p := range seed {
		r.products[p.ID] = p
		if p.ID > r.lastID {
			r.lastID = p.ID
		}
	}
	return r
}

func (r *ProductRepository) List(_ context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (r *ProductRepository) Create(_ context.Context, product model.NewProduct) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	p := model.Product{
		ID:        r.lastID,
		Name:      product.Name,
		Price:     product.Price,
		Available: product.Available,
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepository) Modify(_ context.Context, id int64, fn func(product *model.Product) error) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	if err := fn(&p); err != nil {
		return model.Product{}, err
	}
	p.ID = id
	r.products[id] = p
	return p, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, repository.ErrNotFound)
	}
	delete(r.products, id)
	return p, nil
}
