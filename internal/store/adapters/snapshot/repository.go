package snapshot

import (
	"context"
	"sync"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
)

// RepositoryFactory layers per-collection repositories over the single
// snapshot blob. The collections are cached in memory behind one mutex;
// every mutation rewrites the whole snapshot, which is the only write the
// format supports.
type RepositoryFactory struct {
	store *StoreRepository

	mu     sync.Mutex
	data   repositories.StoreData
	loaded bool
}

// NewRepositoryFactory creates a factory over the snapshot at path.
func NewRepositoryFactory(path string) *RepositoryFactory {
	return &RepositoryFactory{store: NewStoreRepository(path)}
}

// CustomerRepository returns the customer repository over the snapshot.
func (f *RepositoryFactory) CustomerRepository() repositories.CustomerRepository {
	return &CustomerRepository{factory: f}
}

// ProductRepository returns the product repository over the snapshot.
func (f *RepositoryFactory) ProductRepository() repositories.ProductRepository {
	return &ProductRepository{factory: f}
}

// OrderRepository returns the order repository over the snapshot.
func (f *RepositoryFactory) OrderRepository() repositories.OrderRepository {
	return &OrderRepository{factory: f}
}

// StoreRepository returns the combined-blob repository.
func (f *RepositoryFactory) StoreRepository() repositories.StoreRepository {
	return f.store
}

// load fills the cache from the snapshot on first use. Callers hold f.mu.
func (f *RepositoryFactory) load(ctx context.Context) error {
	if f.loaded {
		return nil
	}
	data, err := f.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	f.data = data
	f.loaded = true
	return nil
}

// flush rewrites the snapshot from the cache. Callers hold f.mu.
func (f *RepositoryFactory) flush(ctx context.Context) error {
	return f.store.SaveAll(ctx, f.data)
}

// CustomerRepository implements repositories.CustomerRepository over the
// cached snapshot. The natural key is the PPS number.
type CustomerRepository struct {
	factory *RepositoryFactory
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) GetAll(ctx context.Context) ([]*entities.Customer, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	return append([]*entities.Customer(nil), f.data.Customers...), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.ID() == id })
}

func (r *CustomerRepository) GetByPPS(ctx context.Context, pps string) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.PPS() == pps })
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	return r.find(ctx, func(c *entities.Customer) bool { return c.Email() == email })
}

func (r *CustomerRepository) find(ctx context.Context, match func(*entities.Customer) bool) (*entities.Customer, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	for _, customer := range f.data.Customers {
		if match(customer) {
			return customer, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepository) Add(ctx context.Context, customer *entities.Customer) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Customers = append(f.data.Customers, customer)
	return f.flush(ctx)
}

func (r *CustomerRepository) Update(ctx context.Context, customer *entities.Customer) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	for i, existing := range f.data.Customers {
		if existing.PPS() == customer.PPS() {
			f.data.Customers[i] = customer
			return f.flush(ctx)
		}
	}
	return repositories.ErrNotFound
}

func (r *CustomerRepository) Delete(ctx context.Context, pps string) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	kept := f.data.Customers[:0]
	for _, customer := range f.data.Customers {
		if customer.PPS() != pps {
			kept = append(kept, customer)
		}
	}
	if len(kept) == len(f.data.Customers) {
		return repositories.ErrNotFound
	}
	f.data.Customers = kept
	return f.flush(ctx)
}

func (r *CustomerRepository) SaveAll(ctx context.Context, customers []*entities.Customer) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Customers = append([]*entities.Customer(nil), customers...)
	return f.flush(ctx)
}

// ProductRepository implements repositories.ProductRepository over the
// cached snapshot. The natural key is the product name.
type ProductRepository struct {
	factory *RepositoryFactory
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) GetAll(ctx context.Context) ([]*entities.Product, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	return append([]*entities.Product(nil), f.data.Products...), nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*entities.Product, error) {
	return r.find(ctx, func(p *entities.Product) bool { return p.ID() == id })
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*entities.Product, error) {
	return r.find(ctx, func(p *entities.Product) bool { return p.Name() == name })
}

func (r *ProductRepository) find(ctx context.Context, match func(*entities.Product) bool) (*entities.Product, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	for _, product := range f.data.Products {
		if match(product) {
			return product, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) Add(ctx context.Context, product *entities.Product) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Products = append(f.data.Products, product)
	return f.flush(ctx)
}

func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	for i, existing := range f.data.Products {
		if existing.Name() == product.Name() {
			f.data.Products[i] = product
			return f.flush(ctx)
		}
	}
	return repositories.ErrNotFound
}

func (r *ProductRepository) Delete(ctx context.Context, name string) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	kept := f.data.Products[:0]
	for _, product := range f.data.Products {
		if product.Name() != name {
			kept = append(kept, product)
		}
	}
	if len(kept) == len(f.data.Products) {
		return repositories.ErrNotFound
	}
	f.data.Products = kept
	return f.flush(ctx)
}

func (r *ProductRepository) SaveAll(ctx context.Context, products []*entities.Product) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Products = append([]*entities.Product(nil), products...)
	return f.flush(ctx)
}

// OrderRepository implements repositories.OrderRepository over the cached
// snapshot.
type OrderRepository struct {
	factory *RepositoryFactory
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) GetAll(ctx context.Context) ([]*entities.Order, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	return append([]*entities.Order(nil), f.data.Orders...), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int) (*entities.Order, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	for _, order := range f.data.Orders {
		if order.ID() == id {
			return order, nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) GetByCustomerPPS(ctx context.Context, pps string) ([]*entities.Order, error) {
	return r.filter(ctx, func(o *entities.Order) bool { return o.Customer().PPS() == pps })
}

func (r *OrderRepository) GetByProductName(ctx context.Context, name string) ([]*entities.Order, error) {
	return r.filter(ctx, func(o *entities.Order) bool { return o.FirstProduct().Name() == name })
}

func (r *OrderRepository) filter(ctx context.Context, match func(*entities.Order) bool) ([]*entities.Order, error) {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return nil, err
	}
	matched := make([]*entities.Order, 0)
	for _, order := range f.data.Orders {
		if match(order) {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

func (r *OrderRepository) Add(ctx context.Context, order *entities.Order) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Orders = append(f.data.Orders, order)
	return f.flush(ctx)
}

func (r *OrderRepository) Delete(ctx context.Context, id int) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	kept := f.data.Orders[:0]
	for _, order := range f.data.Orders {
		if order.ID() != id {
			kept = append(kept, order)
		}
	}
	if len(kept) == len(f.data.Orders) {
		return repositories.ErrNotFound
	}
	f.data.Orders = kept
	return f.flush(ctx)
}

func (r *OrderRepository) SaveAll(ctx context.Context, orders []*entities.Order) error {
	f := r.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.load(ctx); err != nil {
		return err
	}
	f.data.Orders = append([]*entities.Order(nil), orders...)
	return f.flush(ctx)
}
