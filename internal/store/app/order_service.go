package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopkeeper/internal/store/domain/entities"
	"shopkeeper/internal/store/ports/repositories"
	"shopkeeper/pkg/logger"
)

// Sort criteria accepted by SortOrders.
const (
	SortByDate        = "date"
	SortByProductName = "product"
)

// OrderService owns the authoritative flat order collection. A customer's
// orders are a filtered view over it (OrdersFor); there is no second,
// per-customer copy to keep in sync.
type OrderService struct {
	repo      repositories.OrderRepository
	customers *CustomerService
	products  *ProductService
	orders    []*entities.Order
	current   *entities.Customer
	ids       *IDAllocator
	now       func() time.Time
}

// NewOrderService creates an order service composing the customer and
// product services for reference lookups and stock updates.
func NewOrderService(repo repositories.OrderRepository, customers *CustomerService, products *ProductService) *OrderService {
	return &OrderService{
		repo:      repo,
		customers: customers,
		products:  products,
		orders:    make([]*entities.Order, 0),
		ids:       NewIDAllocator(),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for order dates and report
// cutoffs. Tests use this to pin "today".
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// SetCurrentCustomer selects the customer subsequent purchases belong to
// and reloads the order collection.
func (s *OrderService) SetCurrentCustomer(ctx context.Context, customer *entities.Customer) error {
	s.current = customer
	return s.Load(ctx)
}

// CurrentCustomer returns the selected customer, or nil.
func (s *OrderService) CurrentCustomer() *entities.Customer {
	return s.current
}

// Orders returns a copy of the flat order list.
func (s *OrderService) Orders() []*entities.Order {
	return append([]*entities.Order(nil), s.orders...)
}

// SetOrders replaces the in-memory list.
func (s *OrderService) SetOrders(orders []*entities.Order) {
	s.orders = append([]*entities.Order(nil), orders...)
}

// OrdersFor returns the orders placed by the customer with the given PPS.
func (s *OrderService) OrdersFor(pps string) []*entities.Order {
	matched := make([]*entities.Order, 0)
	for _, order := range s.orders {
		if order.Customer().PPS() == pps {
			matched = append(matched, order)
		}
	}
	return matched
}

// Load replaces the order list from storage and reseeds the id allocator
// past the highest persisted id.
func (s *OrderService) Load(ctx context.Context) error {
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	s.orders = orders

	maxID := 0
	for _, order := range orders {
		if order.ID() > maxID {
			maxID = order.ID()
		}
	}
	s.ids.Seed(maxID + 1)

	logger.Log(ctx).Debug(ctx, "orders loaded", zap.Int("count", len(orders)))
	return nil
}

// Save persists the whole order list.
func (s *OrderService) Save(ctx context.Context) error {
	if err := s.repo.SaveAll(ctx, s.orders); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

// MakePurchase creates an order of quantity units of the named product for
// the current customer, decrements the product stock and saves the order
// collection. Stock is untouched when any guard fails.
func (s *OrderService) MakePurchase(ctx context.Context, productName string, quantity int) (*entities.Order, error) {
	log := logger.Log(ctx).With(zap.String("method", "MakePurchase"))

	if s.current == nil {
		return nil, ErrNoCurrentCustomer
	}
	product := s.products.FindByName(productName)
	if product == nil {
		log.Warn(ctx, "product not found", zap.String("name", productName))
		return nil, ErrProductNotFound
	}
	decremented, err := product.WithDecreasedStock(quantity)
	if err != nil {
		log.Warn(ctx, "insufficient stock",
			zap.String("name", productName),
			zap.Int("stock", product.Stock()),
			zap.Int("requested", quantity))
		return nil, ErrInsufficientStock
	}

	order, err := entities.NewOrderBuilder(s.current, []*entities.Product{decremented}).
		ID(s.ids.Next()).
		Date(s.now()).
		Quantity(quantity).
		Build()
	if err != nil {
		return nil, err
	}

	s.orders = append(s.orders, order)

	if err := s.products.Update(ctx, decremented); err != nil {
		log.Error(ctx, "failed to update product stock", zap.Error(err))
	}

	if err := s.Save(ctx); err != nil {
		log.Error(ctx, "failed to save orders", zap.Error(err))
	} else {
		log.Debug(ctx, "order saved", zap.Int("id", order.ID()))
	}

	return order, nil
}

// HandlePurchase is the single-unit purchase flow keyed by customer PPS,
// returning a user-facing message rather than an error.
func (s *OrderService) HandlePurchase(ctx context.Context, customerPPS, productName string) string {
	if customerPPS == "" || productName == "" {
		return "Invalid customer PPS or product name."
	}
	customer := s.customers.FindByPPS(customerPPS)
	if customer == nil {
		return "Customer not found."
	}
	product := s.products.FindByName(productName)
	if product == nil {
		return "Product not found."
	}
	if product.Stock() <= 0 {
		return "Product is out of stock."
	}

	previous := s.current
	s.current = customer
	defer func() { s.current = previous }()

	if _, err := s.MakePurchase(ctx, productName, 1); err != nil {
		return fmt.Sprintf("Error processing purchase: %v", err)
	}
	return fmt.Sprintf("Added %s to %s's order.", product.Name(), customer.Name())
}

// RemoveOrder deletes the order with the given id from storage, then from
// memory. The in-memory list is untouched when the delete fails.
func (s *OrderService) RemoveOrder(ctx context.Context, id int) error {
	found := false
	for _, order := range s.orders {
		if order.ID() == id {
			found = true
			break
		}
	}
	if !found {
		return ErrOrderNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	kept := s.orders[:0]
	for _, order := range s.orders {
		if order.ID() != id {
			kept = append(kept, order)
		}
	}
	s.orders = kept
	return nil
}

// SortOrders bubble-sorts the flat order list by date or by first-product
// name (case-insensitive) and renders the sorted orders as a report.
// Adjacent elements swap only on strictly greater comparison, so orders
// with equal keys keep their relative input positions. The quadratic sort
// is intentional at this data scale; replacing it would change tie-break
// behavior in the rendered report.
func (s *OrderService) SortOrders(criteria string) string {
	if len(s.orders) == 0 {
		return "No orders to sort."
	}

	var greater func(a, b *entities.Order) bool
	switch criteria {
	case SortByDate:
		greater = func(a, b *entities.Order) bool { return a.Date().After(b.Date()) }
	case SortByProductName:
		greater = func(a, b *entities.Order) bool {
			return strings.ToLower(a.FirstProduct().Name()) > strings.ToLower(b.FirstProduct().Name())
		}
	default:
		return "Invalid sorting criteria."
	}

	sorted := s.Orders()
	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if greater(sorted[j], sorted[j+1]) {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}
	s.orders = sorted

	var sb strings.Builder
	sb.WriteString("Orders sorted by " + criteria + ":\n")
	sb.WriteString("========================================\n")
	for _, order := range sorted {
		sb.WriteString(fmt.Sprintf("Customer: %s (%s)\n", order.Customer().Name(), order.Customer().PPS()))
		sb.WriteString("----------------------------------------\n")
		sb.WriteString("Date: " + order.Date().Format(entities.DateLayout) + "\n")
		sb.WriteString("Products:\n")
		for _, product := range order.Products() {
			sb.WriteString(fmt.Sprintf("  - %s: $%.2f\n", product.Name(), product.Price()))
		}
		sb.WriteString(fmt.Sprintf("Order Total: $%.2f\n", order.Total()))
		sb.WriteString("----------------------------------------\n")
	}
	sb.WriteString("========================================\n")
	return sb.String()
}

// lastMonthCutoff is one calendar month before today, not a rolling
// 30-day window. An order counts when its date is strictly after it.
func (s *OrderService) lastMonthCutoff() time.Time {
	return s.now().AddDate(0, -1, 0)
}

// SalesReportLastMonth counts products sold since the last-month cutoff.
func (s *OrderService) SalesReportLastMonth() string {
	cutoff := s.lastMonthCutoff()
	soldCount := 0
	for _, order := range s.orders {
		if order.Date().After(cutoff) {
			soldCount += len(order.Products())
		}
	}
	return fmt.Sprintf("Products sold last month: %d", soldCount)
}

// CustomerPurchasesLastMonth renders the orders a customer placed since
// the last-month cutoff.
func (s *OrderService) CustomerPurchasesLastMonth(customerPPS string) string {
	if customerPPS == "" {
		return "Invalid customer PPS."
	}
	customer := s.customers.FindByPPS(customerPPS)
	if customer == nil {
		return "Customer not found."
	}

	cutoff := s.lastMonthCutoff()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Purchases for %s last month:\n", customer.Name()))
	hasPurchases := false
	for _, order := range s.OrdersFor(customerPPS) {
		if !order.Date().After(cutoff) {
			continue
		}
		hasPurchases = true
		sb.WriteString("Date: " + order.Date().Format(entities.DateLayout) + "\n")
		sb.WriteString("Products:\n")
		for _, product := range order.Products() {
			sb.WriteString(fmt.Sprintf("- %s: $%.2f\n", product.Name(), product.Price()))
		}
		sb.WriteString(fmt.Sprintf("Order Total: $%.2f\n\n", order.Total()))
	}
	if !hasPurchases {
		return fmt.Sprintf("No purchases found for %s last month.", customer.Name())
	}
	return sb.String()
}

// CalculateTotal sums the totals of every order the customer has placed.
func (s *OrderService) CalculateTotal(customerPPS string) (float64, error) {
	if s.customers.FindByPPS(customerPPS) == nil {
		return 0, ErrCustomerNotFound
	}
	var total float64
	for _, order := range s.OrdersFor(customerPPS) {
		total += order.Total()
	}
	return total, nil
}

// GenerateReceipt renders a receipt over every order the customer has
// placed.
func (s *OrderService) GenerateReceipt(customerPPS string) string {
	customer := s.customers.FindByPPS(customerPPS)
	if customer == nil {
		return "Invalid customer."
	}
	orders := s.OrdersFor(customerPPS)
	if len(orders) == 0 {
		return fmt.Sprintf("No orders found for %s.", customer.Name())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Receipt for: %s\n", customer.Name()))
	sb.WriteString("Date: " + s.now().Format(entities.DateLayout) + "\n\n")
	var total float64
	for _, order := range orders {
		sb.WriteString("Order Date: " + order.Date().Format(entities.DateLayout) + "\n")
		sb.WriteString("Items:\n")
		for _, product := range order.Products() {
			sb.WriteString(fmt.Sprintf("- %s: $%.2f\n", product.Name(), product.Price()))
		}
		sb.WriteString(fmt.Sprintf("Order Total: $%.2f\n", order.Total()))
		total += order.Total()
	}
	sb.WriteString(fmt.Sprintf("Grand Total: $%.2f\n", total))
	return sb.String()
}
