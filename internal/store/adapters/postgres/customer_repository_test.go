package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/adapters/postgres"
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

func mockCustomer(t *testing.T) *entities.Customer {
	t.Helper()
	customer, err := entities.NewCustomerBuilder("Alice", "alice@example.com", "hash", "1234567A").
		Address("1 Main Street").
		Build()
	require.NoError(t, err)
	return customer
}

func TestCustomerRepository_GetByPPS(t *testing.T) {
	ctx := testContext(t)

	t.Run("returns the matching customer", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "name", "email", "password", "pps", "address"}).
			AddRow(7, "Alice", "alice@example.com", "hash", "1234567A", "1 Main Street")

		mock.ExpectQuery("SELECT id, name, email, password, pps, address FROM customers WHERE pps").
			WithArgs("1234567A").
			WillReturnRows(rows)

		repo := postgres.NewCustomerRepository(mock)

		customer, err := repo.GetByPPS(ctx, "1234567A")
		require.NoError(t, err)
		require.NotNil(t, customer)
		assert.Equal(t, 7, customer.ID())
		assert.Equal(t, "Alice", customer.Name())
		assert.Equal(t, "1 Main Street", customer.Address())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows yields nil without error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, name, email, password, pps, address FROM customers WHERE pps").
			WithArgs("9999999Z").
			WillReturnError(pgx.ErrNoRows)

		repo := postgres.NewCustomerRepository(mock)

		customer, err := repo.GetByPPS(ctx, "9999999Z")
		require.NoError(t, err)
		assert.Nil(t, customer)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, name, email, password, pps, address FROM customers WHERE pps").
			WithArgs("1234567A").
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewCustomerRepository(mock)

		customer, err := repo.GetByPPS(ctx, "1234567A")
		assert.Nil(t, customer)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error querying customer")

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_GetAll(t *testing.T) {
	ctx := testContext(t)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "name", "email", "password", "pps", "address"}).
		AddRow(1, "Alice", "alice@example.com", "hash", "1234567A", "1 Main Street").
		AddRow(2, "Bob", "bob@example.com", "hash", "7654321B", "2 High Road")

	mock.ExpectQuery("SELECT id, name, email, password, pps, address FROM customers").
		WillReturnRows(rows)

	repo := postgres.NewCustomerRepository(mock)

	customers, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alice", customers[0].Name())
	assert.Equal(t, "Bob", customers[1].Name())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Add(t *testing.T) {
	ctx := testContext(t)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	customer := mockCustomer(t)

	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(42))

	repo := postgres.NewCustomerRepository(mock)

	require.NoError(t, repo.Add(ctx, customer))
	assert.Equal(t, 42, customer.ID(), "insert must assign the returned id")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Update(t *testing.T) {
	ctx := testContext(t)

	t.Run("updates the row by id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		customer := mockCustomer(t)
		customer.SetID(7)

		mock.ExpectExec("UPDATE customers SET").
			WithArgs(customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(), 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := postgres.NewCustomerRepository(mock)

		require.NoError(t, repo.Update(ctx, customer))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected returns ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		customer := mockCustomer(t)

		mock.ExpectExec("UPDATE customers SET").
			WithArgs(customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address(), 0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := postgres.NewCustomerRepository(mock)

		assert.ErrorIs(t, repo.Update(ctx, customer), repositories.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_Delete(t *testing.T) {
	ctx := testContext(t)

	t.Run("deletes by PPS", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM customers WHERE pps").
			WithArgs("1234567A").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewCustomerRepository(mock)

		require.NoError(t, repo.Delete(ctx, "1234567A"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown PPS returns ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM customers WHERE pps").
			WithArgs("9999999Z").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewCustomerRepository(mock)

		assert.ErrorIs(t, repo.Delete(ctx, "9999999Z"), repositories.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_SaveAll(t *testing.T) {
	ctx := testContext(t)

	t.Run("upserts every customer in one transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		customer := mockCustomer(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectCommit()

		repo := postgres.NewCustomerRepository(mock)

		require.NoError(t, repo.SaveAll(ctx, []*entities.Customer{customer}))
		assert.Equal(t, 5, customer.ID())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on first failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		customer := mockCustomer(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO customers").
			WithArgs(customer.Name(), customer.Email(), customer.PasswordHash(), customer.PPS(), customer.Address()).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		repo := postgres.NewCustomerRepository(mock)

		err = repo.SaveAll(ctx, []*entities.Customer{customer})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error saving customer")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
