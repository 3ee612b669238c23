package textfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/adapters/textfile"
	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
)

func newProduct(t *testing.T, id int, name string, price float64, stock int) *entities.Product {
	t.Helper()
	product, err := entities.NewProductBuilder(name, price).ID(id).Stock(stock).Build()
	require.NoError(t, err)
	return product
}

func TestProductRepository_GetAll(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing file yields empty collection", func(t *testing.T) {
		repo := textfile.NewRepositoryFactory(t.TempDir()).ProductRepository()

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		dir := t.TempDir()
		content := "1,Aspirin,5.00,10\nnot a product\n2,Bandage,2.50,30\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, textfile.ProductsFile), []byte(content), 0o644))

		repo := textfile.NewRepositoryFactory(dir).ProductRepository()

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Aspirin", products[0].Name())
		assert.Equal(t, "Bandage", products[1].Name())
	})
}

func TestProductRepository_Lookups(t *testing.T) {
	ctx := testContext(t)
	repo := textfile.NewRepositoryFactory(t.TempDir()).ProductRepository()
	require.NoError(t, repo.Add(ctx, newProduct(t, 1, "Aspirin", 5.0, 10)))

	found, err := repo.GetByName(ctx, "Aspirin")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 10, found.Stock())

	byID, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := repo.GetByName(ctx, "Vitamins")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_UpdateRewritesFile(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	repo := textfile.NewRepositoryFactory(dir).ProductRepository()

	require.NoError(t, repo.Add(ctx, newProduct(t, 1, "Aspirin", 5.0, 10)))
	require.NoError(t, repo.Add(ctx, newProduct(t, 2, "Bandage", 2.5, 30)))

	require.NoError(t, repo.Update(ctx, newProduct(t, 1, "Aspirin", 5.0, 7)))

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 7, products[0].Stock())
	assert.Equal(t, 30, products[1].Stock())

	assert.ErrorIs(t, repo.Update(ctx, newProduct(t, 9, "Vitamins", 8.0, 5)), repositories.ErrNotFound)
}

func TestProductRepository_Delete(t *testing.T) {
	ctx := testContext(t)
	repo := textfile.NewRepositoryFactory(t.TempDir()).ProductRepository()

	require.NoError(t, repo.Add(ctx, newProduct(t, 1, "Aspirin", 5.0, 10)))
	require.NoError(t, repo.Delete(ctx, "Aspirin"))

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	assert.ErrorIs(t, repo.Delete(ctx, "Aspirin"), repositories.ErrNotFound)
}
