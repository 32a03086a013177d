package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/iyhunko/catalogo-prodotti/internal/repository"
	reposql "github.com/iyhunko/catalogo-prodotti/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	ctx := context.Background()
	productRepo := reposql.NewProductRepository(testDB.DB)

	t.Run("create assigns sequential ids", func(t *testing.T) {
		testDB.TruncateTables(t)

		pen, err := productRepo.Create(ctx, model.NewProduct{Name: "Pen", Price: 2, Available: true})
		require.NoError(t, err)
		mug, err := productRepo.Create(ctx, model.NewProduct{Name: "Mug", Price: 10.5})
		require.NoError(t, err)

		assert.Equal(t, int64(1), pen.ID)
		assert.Equal(t, int64(2), mug.ID)

		products, err := productRepo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Product{pen, mug}, products)
	})

	t.Run("check constraints reject invalid products", func(t *testing.T) {
		testDB.TruncateTables(t)

		_, err := productRepo.Create(ctx, model.NewProduct{Name: "Pen", Price: 0})
		assert.ErrorIs(t, err, model.ErrInvalidProduct)

		_, err = productRepo.Create(ctx, model.NewProduct{Name: "  ", Price: 3})
		assert.ErrorIs(t, err, model.ErrInvalidProduct)

		products, err := productRepo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("modify commits the change", func(t *testing.T) {
		testDB.TruncateTables(t)

		created, err := productRepo.Create(ctx, model.NewProduct{Name: "Pen", Price: 2, Available: true})
		require.NoError(t, err)

		updated, err := productRepo.Modify(ctx, created.ID, func(p *model.Product) error {
			*p = model.AvailabilityPatch(false).Apply(*p)
			return nil
		})
		require.NoError(t, err)
		assert.False(t, updated.Available)

		found, err := productRepo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, found)
	})

	t.Run("modify rolls back on error", func(t *testing.T) {
		testDB.TruncateTables(t)

		created, err := productRepo.Create(ctx, model.NewProduct{Name: "Pen", Price: 2, Available: true})
		require.NoError(t, err)

		rejected := errors.New("rejected")
		_, err = productRepo.Modify(ctx, created.ID, func(p *model.Product) error {
			p.Name = "Changed"
			return rejected
		})
		assert.ErrorIs(t, err, rejected)

		found, err := productRepo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("modify of an unknown id", func(t *testing.T) {
		testDB.TruncateTables(t)

		_, err := productRepo.Modify(ctx, 42, func(*model.Product) error { return nil })
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete returns the removed row", func(t *testing.T) {
		testDB.TruncateTables(t)

		created, err := productRepo.Create(ctx, model.NewProduct{Name: "Pen", Price: 2, Available: true})
		require.NoError(t, err)

		deleted, err := productRepo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, deleted)

		_, err = productRepo.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
