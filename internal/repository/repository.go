package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/catalogo-prodotti/internal/model"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines the storage of catalog products.
type ProductRepository interface {
	// List returns every product ordered by id.
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// Create stores a new product and assigns its id.
	Create(ctx context.Context, product model.NewProduct) (model.Product, error)
	// Modify loads the product, lets fn change it and stores the result atomically.
	// An error from fn aborts the change and is returned as is.
	Modify(ctx context.Context, id int64, fn func(product *model.Product) error) (model.Product, error)
	// Delete removes the product and returns the removed record.
	Delete(ctx context.Context, id int64) (model.Product, error)
}
