package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/app"
)

func TestProductService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("adds and persists a product", func(t *testing.T) {
		repo := &memProductRepo{}
		service := app.NewProductService(repo)

		require.NoError(t, service.Add(ctx, buildProduct(t, "Aspirin", 5.0, 10)))

		assert.Len(t, service.Products(), 1)
		assert.Len(t, repo.products, 1)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		service := app.NewProductService(&memProductRepo{})

		require.NoError(t, service.Add(ctx, buildProduct(t, "Aspirin", 5.0, 10)))
		err := service.Add(ctx, buildProduct(t, "Aspirin", 6.0, 3))

		assert.ErrorIs(t, err, app.ErrDuplicateProduct)
		assert.Len(t, service.Products(), 1)
	})
}

func TestProductService_Remove(t *testing.T) {
	ctx := context.Background()
	repo := &memProductRepo{}
	service := app.NewProductService(repo)

	require.NoError(t, service.Add(ctx, buildProduct(t, "Aspirin", 5.0, 10)))

	require.NoError(t, service.Remove(ctx, "Aspirin"))
	assert.Empty(t, service.Products())
	assert.Empty(t, repo.products)

	assert.ErrorIs(t, service.Remove(ctx, "Aspirin"), app.ErrProductNotFound)

	t.Run("delete failure leaves the in-memory list intact", func(t *testing.T) {
		failing := &memProductRepo{deleteErr: errors.New("disk full")}
		svc := app.NewProductService(failing)
		require.NoError(t, svc.Add(ctx, buildProduct(t, "Bandage", 2.5, 4)))

		require.Error(t, svc.Remove(ctx, "Bandage"))
		assert.NotNil(t, svc.FindByName("Bandage"))
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	service := app.NewProductService(&memProductRepo{})

	require.NoError(t, service.Add(ctx, buildProduct(t, "Aspirin", 5.0, 10)))

	require.NoError(t, service.Update(ctx, buildProduct(t, "Aspirin", 5.0, 7)))
	assert.Equal(t, 7, service.FindByName("Aspirin").Stock())

	assert.ErrorIs(t, service.Update(ctx, buildProduct(t, "Vitamins", 8.0, 5)), app.ErrProductNotFound)

	t.Run("update failure leaves the in-memory list intact", func(t *testing.T) {
		failing := &memProductRepo{updateErr: errors.New("disk full")}
		svc := app.NewProductService(failing)
		require.NoError(t, svc.Add(ctx, buildProduct(t, "Bandage", 2.5, 4)))

		require.Error(t, svc.Update(ctx, buildProduct(t, "Bandage", 2.5, 1)))
		assert.Equal(t, 4, svc.FindByName("Bandage").Stock())
	})
}

func TestProductService_StockInfo(t *testing.T) {
	ctx := context.Background()
	service := app.NewProductService(&memProductRepo{})
	require.NoError(t, service.Add(ctx, buildProduct(t, "Aspirin", 5.0, 10)))

	assert.Equal(t, "Current stock for Aspirin: 10", service.StockInfo("Aspirin"))
	assert.Equal(t, "Product not found.", service.StockInfo("Vitamins"))
	assert.Equal(t, "Invalid product name.", service.StockInfo(""))
}
