package service

import (
	"context"
	"log/slog"

	"github.com/iyhunko/catalogo-prodotti/internal/metrics"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
	"github.com/iyhunko/catalogo-prodotti/internal/sqs"
)

// Publisher announces catalog changes.
type Publisher interface {
	PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error
}

type ProductService struct {
	repo      repository.ProductRepository
	publisher Publisher
}

// NewProductService creates the service. A nil publisher disables change notifications.
func NewProductService(repo repository.ProductRepository, publisher Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

func (ps *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return ps.repo.List(ctx)
}

func (ps *ProductService) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

func (ps *ProductService) CreateProduct(ctx context.Context, product model.NewProduct) (model.Product, error) {
	if err := model.ValidateFields(product.Name, product.Price); err != nil {
		return model.Product{}, err
	}

	created, err := ps.repo.Create(ctx, product)
	if err != nil {
		return model.Product{}, err
	}

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, sqs.ActionCreated, created)

	return created, nil
}

// UpdateProduct applies patch to the stored product. The result must still be a valid product.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error) {
	updated, err := ps.repo.Modify(ctx, id, func(product *model.Product) error {
		*product = patch.Apply(*product)
		return product.Validate()
	})
	if err != nil {
		return model.Product{}, err
	}

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, sqs.ActionUpdated, updated)

	return updated, nil
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := ps.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, sqs.ActionDeleted, deleted)

	return nil
}

func (ps *ProductService) publish(ctx context.Context, action string, product model.Product) {
	if ps.publisher == nil {
		return
	}
	if err := ps.publisher.PublishProductMessage(ctx, sqs.NewProductMessage(action, product)); err != nil {
		// Log error but don't fail the request
		slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", action), slog.Int64("product_id", product.ID))
	}
}
