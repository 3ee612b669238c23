package textfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/adapters/textfile"
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

func newCustomer(t *testing.T, name, email, pps string) *entities.Customer {
	t.Helper()
	customer, err := entities.NewCustomerBuilder(name, email, "hash", pps).
		Address("1 Main Street").
		Build()
	require.NoError(t, err)
	return customer
}

func TestCustomerRepository_GetAll(t *testing.T) {
	ctx := testContext(t)

	t.Run("missing file yields empty collection", func(t *testing.T) {
		factory := textfile.NewRepositoryFactory(t.TempDir())
		repo := factory.CustomerRepository()

		customers, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, customers)
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, textfile.CustomersFile)
		content := "Alice,alice@example.com,hash,1234567A,1 Main Street\n" +
			"garbage line\n" +
			"Bob,bob@example.com,hash,7654321B,2 High Road\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		repo := textfile.NewRepositoryFactory(dir).CustomerRepository()

		customers, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, "Alice", customers[0].Name())
		assert.Equal(t, "Bob", customers[1].Name())
	})
}

func TestCustomerRepository_Add(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	repo := textfile.NewRepositoryFactory(dir).CustomerRepository()

	require.NoError(t, repo.Add(ctx, newCustomer(t, "Alice", "alice@example.com", "1234567A")))
	require.NoError(t, repo.Add(ctx, newCustomer(t, "Bob", "bob@example.com", "7654321B")))

	raw, err := os.ReadFile(filepath.Join(dir, textfile.CustomersFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2, "add must append, not rewrite")
	assert.Equal(t, "Alice,alice@example.com,hash,1234567A,1 Main Street", lines[0])

	customers, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}

func TestCustomerRepository_Lookups(t *testing.T) {
	ctx := testContext(t)
	repo := textfile.NewRepositoryFactory(t.TempDir()).CustomerRepository()
	require.NoError(t, repo.Add(ctx, newCustomer(t, "Alice", "alice@example.com", "1234567A")))

	t.Run("by PPS", func(t *testing.T) {
		found, err := repo.GetByPPS(ctx, "1234567A")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Alice", found.Name())
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
	})

	t.Run("no match returns nil without error", func(t *testing.T) {
		found, err := repo.GetByPPS(ctx, "9999999Z")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestCustomerRepository_Update(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	repo := textfile.NewRepositoryFactory(dir).CustomerRepository()

	require.NoError(t, repo.Add(ctx, newCustomer(t, "Alice", "alice@example.com", "1234567A")))
	require.NoError(t, repo.Add(ctx, newCustomer(t, "Bob", "bob@example.com", "7654321B")))

	updated := newCustomer(t, "Alison", "alison@example.com", "1234567A")
	require.NoError(t, repo.Update(ctx, updated))

	customers, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alison", customers[0].Name())
	assert.Equal(t, "Bob", customers[1].Name())

	t.Run("unknown PPS returns ErrNotFound", func(t *testing.T) {
		missing := newCustomer(t, "Carol", "carol@example.com", "1111111C")
		assert.ErrorIs(t, repo.Update(ctx, missing), repositories.ErrNotFound)
	})
}

func TestCustomerRepository_Delete(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	repo := textfile.NewRepositoryFactory(dir).CustomerRepository()

	require.NoError(t, repo.Add(ctx, newCustomer(t, "Alice", "alice@example.com", "1234567A")))
	require.NoError(t, repo.Add(ctx, newCustomer(t, "Bob", "bob@example.com", "7654321B")))

	require.NoError(t, repo.Delete(ctx, "1234567A"))

	customers, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Bob", customers[0].Name())

	assert.ErrorIs(t, repo.Delete(ctx, "1234567A"), repositories.ErrNotFound)
}

func TestCustomerRepository_SaveAll(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	repo := textfile.NewRepositoryFactory(dir).CustomerRepository()

	require.NoError(t, repo.Add(ctx, newCustomer(t, "Old", "old@example.com", "1111111A")))

	replacement := []*entities.Customer{
		newCustomer(t, "Alice", "alice@example.com", "1234567A"),
		newCustomer(t, "Bob", "bob@example.com", "7654321B"),
	}
	require.NoError(t, repo.SaveAll(ctx, replacement))

	customers, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alice", customers[0].Name())
}
