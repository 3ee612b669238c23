package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
)

// In-memory repositories standing in for a storage backend. Each records
// the mutations it sees and can be forced to fail.
type memCustomerRepo struct {
	customers []*entities.Customer
	addErr    error
	updateErr error
	deleteErr error
	saveCalls int
}

var _ repositories.CustomerRepository = (*memCustomerRepo)(nil)

func (m *memCustomerRepo) GetAll(context.Context) ([]*entities.Customer, error) {
	return append([]*entities.Customer(nil), m.customers...), nil
}

func (m *memCustomerRepo) GetByID(_ context.Context, id int) (*entities.Customer, error) {
	for _, c := range m.customers {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerRepo) GetByPPS(_ context.Context, pps string) (*entities.Customer, error) {
	for _, c := range m.customers {
		if c.PPS() == pps {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerRepo) GetByEmail(_ context.Context, email string) (*entities.Customer, error) {
	for _, c := range m.customers {
		if c.Email() == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCustomerRepo) Add(_ context.Context, customer *entities.Customer) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.customers = append(m.customers, customer)
	return nil
}

func (m *memCustomerRepo) Update(_ context.Context, customer *entities.Customer) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, existing := range m.customers {
		if existing.PPS() == customer.PPS() {
			m.customers[i] = customer
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memCustomerRepo) Delete(_ context.Context, pps string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, existing := range m.customers {
		if existing.PPS() == pps {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memCustomerRepo) SaveAll(_ context.Context, customers []*entities.Customer) error {
	m.saveCalls++
	m.customers = append([]*entities.Customer(nil), customers...)
	return nil
}

type memProductRepo struct {
	products  []*entities.Product
	updateErr error
	deleteErr error
}

var _ repositories.ProductRepository = (*memProductRepo)(nil)

func (m *memProductRepo) GetAll(context.Context) ([]*entities.Product, error) {
	return append([]*entities.Product(nil), m.products...), nil
}

func (m *memProductRepo) GetByID(_ context.Context, id int) (*entities.Product, error) {
	for _, p := range m.products {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) GetByName(_ context.Context, name string) (*entities.Product, error) {
	for _, p := range m.products {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) Add(_ context.Context, product *entities.Product) error {
	m.products = append(m.products, product)
	return nil
}

func (m *memProductRepo) Update(_ context.Context, product *entities.Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, existing := range m.products {
		if existing.Name() == product.Name() {
			m.products[i] = product
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memProductRepo) Delete(_ context.Context, name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, existing := range m.products {
		if existing.Name() == name {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memProductRepo) SaveAll(_ context.Context, products []*entities.Product) error {
	m.products = append([]*entities.Product(nil), products...)
	return nil
}

type memOrderRepo struct {
	orders    []*entities.Order
	deleteErr error
	saveCalls int
}

var _ repositories.OrderRepository = (*memOrderRepo)(nil)

func (m *memOrderRepo) GetAll(context.Context) ([]*entities.Order, error) {
	return append([]*entities.Order(nil), m.orders...), nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id int) (*entities.Order, error) {
	for _, o := range m.orders {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, nil
}

func (m *memOrderRepo) GetByCustomerPPS(_ context.Context, pps string) ([]*entities.Order, error) {
	matched := make([]*entities.Order, 0)
	for _, o := range m.orders {
		if o.Customer().PPS() == pps {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (m *memOrderRepo) GetByProductName(_ context.Context, name string) ([]*entities.Order, error) {
	matched := make([]*entities.Order, 0)
	for _, o := range m.orders {
		if o.FirstProduct().Name() == name {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (m *memOrderRepo) Add(_ context.Context, order *entities.Order) error {
	m.orders = append(m.orders, order)
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, existing := range m.orders {
		if existing.ID() == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memOrderRepo) SaveAll(_ context.Context, orders []*entities.Order) error {
	m.saveCalls++
	m.orders = append([]*entities.Order(nil), orders...)
	return nil
}

// fakePasswordService hashes with a reversible marker so tests stay fast.
type fakePasswordService struct{}

func (fakePasswordService) Hash(_ context.Context, password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordService) Verify(_ context.Context, password, hash string) (bool, error) {
	return hash == "hashed:"+password, nil
}

func buildCustomer(t *testing.T, name, email, pps string) *entities.Customer {
	t.Helper()
	customer, err := entities.NewCustomerBuilder(name, email, "hashed:secret123", pps).Build()
	require.NoError(t, err)
	return customer
}

func buildProduct(t *testing.T, name string, price float64, stock int) *entities.Product {
	t.Helper()
	product, err := entities.NewProductBuilder(name, price).Stock(stock).Build()
	require.NoError(t, err)
	return product
}
