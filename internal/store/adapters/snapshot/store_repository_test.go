package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/adapters/snapshot"
	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func testStoreData(t *testing.T) repositories.StoreData {
	t.Helper()

	alice, err := entities.NewCustomerBuilder("Alice", "alice@example.com", "hash", "1234567A").
		ID(1).
		Address("1 Main Street").
		Build()
	require.NoError(t, err)
	bob, err := entities.NewCustomerBuilder("Bob", "bob@example.com", "hash", "7654321B").Build()
	require.NoError(t, err)

	aspirin, err := entities.NewProductBuilder("Aspirin", 5.0).ID(1).Stock(10).Build()
	require.NoError(t, err)

	order, err := entities.NewOrderBuilder(alice, []*entities.Product{aspirin}).
		ID(1).
		Date(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)).
		Quantity(2).
		Build()
	require.NoError(t, err)

	return repositories.StoreData{
		Customers: []*entities.Customer{alice, bob},
		Products:  []*entities.Product{aspirin},
		Orders:    []*entities.Order{order},
	}
}

func TestStoreRepository_RoundTrip(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), snapshot.DefaultFile)
	repo := snapshot.NewStoreRepository(path)

	saved := testStoreData(t)
	require.NoError(t, repo.SaveAll(ctx, saved))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Customers, 2)
	require.Len(t, loaded.Products, 1)
	require.Len(t, loaded.Orders, 1)

	assert.Equal(t, "Alice", loaded.Customers[0].Name())
	assert.Equal(t, "Bob", loaded.Customers[1].Name())
	assert.Equal(t, "1 Main Street", loaded.Customers[0].Address())

	assert.Equal(t, "Aspirin", loaded.Products[0].Name())
	assert.InDelta(t, 5.0, loaded.Products[0].Price(), 0.001)
	assert.Equal(t, 10, loaded.Products[0].Stock())

	order := loaded.Orders[0]
	assert.Equal(t, 1, order.ID())
	assert.Equal(t, "1234567A", order.Customer().PPS())
	assert.Equal(t, "Aspirin", order.FirstProduct().Name())
	assert.Equal(t, 2, order.Quantity())
	assert.InDelta(t, 10.0, order.Total(), 0.001)
}

func TestStoreRepository_LoadAllMissingFile(t *testing.T) {
	ctx := testContext(t)
	repo := snapshot.NewStoreRepository(filepath.Join(t.TempDir(), snapshot.DefaultFile))

	data, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Customers)
	assert.Empty(t, data.Products)
	assert.Empty(t, data.Orders)
}

func TestStoreRepository_LoadAllCorruptFile(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), snapshot.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	repo := snapshot.NewStoreRepository(path)

	_, err := repo.LoadAll(ctx)
	assert.Error(t, err)
}

func TestStoreRepository_SaveAllReplacesPreviousSnapshot(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), snapshot.DefaultFile)
	repo := snapshot.NewStoreRepository(path)

	require.NoError(t, repo.SaveAll(ctx, testStoreData(t)))
	require.NoError(t, repo.SaveAll(ctx, repositories.StoreData{}))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Customers)
	assert.Empty(t, loaded.Orders)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not be left behind")
}

func TestRepositoryFactory_CollectionsShareOneSnapshot(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), snapshot.DefaultFile)
	factory := snapshot.NewRepositoryFactory(path)

	customer, err := entities.NewCustomerBuilder("Alice", "alice@example.com", "hash", "1234567A").Build()
	require.NoError(t, err)
	require.NoError(t, factory.CustomerRepository().Add(ctx, customer))

	product, err := entities.NewProductBuilder("Aspirin", 5.0).Stock(10).Build()
	require.NoError(t, err)
	require.NoError(t, factory.ProductRepository().Add(ctx, product))

	order, err := entities.NewOrderBuilder(customer, []*entities.Product{product}).
		ID(1).
		Date(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)).
		Build()
	require.NoError(t, err)
	require.NoError(t, factory.OrderRepository().Add(ctx, order))

	// A fresh factory reads everything back from the one blob.
	reloaded := snapshot.NewRepositoryFactory(path)

	customers, err := reloaded.CustomerRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	products, err := reloaded.ProductRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	orders, err := reloaded.OrderRepository().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1234567A", orders[0].Customer().PPS())
}

func TestRepositoryFactory_DeleteRewritesSnapshot(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), snapshot.DefaultFile)
	factory := snapshot.NewRepositoryFactory(path)

	customer, err := entities.NewCustomerBuilder("Alice", "alice@example.com", "hash", "1234567A").Build()
	require.NoError(t, err)
	require.NoError(t, factory.CustomerRepository().Add(ctx, customer))

	require.NoError(t, factory.CustomerRepository().Delete(ctx, "1234567A"))
	assert.ErrorIs(t, factory.CustomerRepository().Delete(ctx, "1234567A"), repositories.ErrNotFound)

	reloaded := snapshot.NewRepositoryFactory(path)
	customers, err := reloaded.CustomerRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)
}
