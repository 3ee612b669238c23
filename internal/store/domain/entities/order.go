package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 date format used for order dates in both the
// text backend and report output.
const DateLayout = "2006-01-02"

// Order records a purchase: one customer, the purchased products (exactly
// one in the current flows), a date, a quantity and the computed total.
// The id is assigned by the application's allocator, not at construction.
type Order struct {
	id       int
	customer *Customer
	products []*Product
	date     time.Time
	quantity int
	total    float64
}

// OrderBuilder assembles and validates an Order.
type OrderBuilder struct {
	id       int
	customer *Customer
	products []*Product
	date     time.Time
	quantity int
}

// NewOrderBuilder starts a builder for the given customer and products.
func NewOrderBuilder(customer *Customer, products []*Product) *OrderBuilder {
	return &OrderBuilder{
		customer: customer,
		products: append([]*Product(nil), products...),
		quantity: 1,
	}
}

// ID sets the order id.
func (b *OrderBuilder) ID(id int) *OrderBuilder {
	b.id = id
	return b
}

// Date sets the order date.
func (b *OrderBuilder) Date(date time.Time) *OrderBuilder {
	b.date = date
	return b
}

// Quantity sets the purchased quantity.
func (b *OrderBuilder) Quantity(quantity int) *OrderBuilder {
	b.quantity = quantity
	return b
}

// Build validates the collected fields and returns the order with its total
// computed as price x quantity summed over the product list.
func (b *OrderBuilder) Build() (*Order, error) {
	if b.customer == nil {
		return nil, fmt.Errorf("%w: order customer cannot be nil", ErrValidation)
	}
	if len(b.products) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one product", ErrValidation)
	}
	if b.date.IsZero() {
		return nil, fmt.Errorf("%w: order date cannot be zero", ErrValidation)
	}
	if b.quantity < 1 {
		return nil, fmt.Errorf("%w: order quantity must be at least 1", ErrValidation)
	}

	order := &Order{
		id:       b.id,
		customer: b.customer,
		products: b.products,
		date:     b.date,
		quantity: b.quantity,
	}
	order.total = order.calculateTotal()
	return order, nil
}

func (o *Order) ID() int             { return o.id }
func (o *Order) Customer() *Customer { return o.customer }
func (o *Order) Date() time.Time     { return o.date }
func (o *Order) Quantity() int       { return o.quantity }
func (o *Order) Total() float64      { return o.total }

// Products returns a copy of the product list.
func (o *Order) Products() []*Product {
	return append([]*Product(nil), o.products...)
}

// FirstProduct returns the first product in the order. Orders created by the
// purchase flows always have exactly one.
func (o *Order) FirstProduct() *Product {
	return o.products[0]
}

func (o *Order) calculateTotal() float64 {
	var total float64
	for _, p := range o.products {
		total += p.Price() * float64(o.quantity)
	}
	return total
}

// Record renders the order as an orders.txt line:
// orderId,customerPps,date,quantity,productName.
func (o *Order) Record() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(o.id))
	sb.WriteString(",")
	sb.WriteString(o.customer.PPS())
	sb.WriteString(",")
	sb.WriteString(o.date.Format(DateLayout))
	sb.WriteString(",")
	sb.WriteString(strconv.Itoa(o.quantity))
	sb.WriteString(",")
	sb.WriteString(o.products[0].Name())
	return sb.String()
}

// OrderFromRecord parses an orders.txt line, resolving the customer PPS and
// product name against the given collections. A line whose references do not
// resolve returns ErrUnknownCustomer or ErrUnknownProduct; callers drop such
// orders from the loaded list.
func OrderFromRecord(line string, customers []*Customer, products []*Product) (*Order, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: expected 5 order fields, got %d", ErrInvalidRecord, len(parts))
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: order id: %w", ErrInvalidRecord, err)
	}
	pps := strings.TrimSpace(parts[1])
	date, err := time.Parse(DateLayout, strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, fmt.Errorf("%w: order date: %w", ErrInvalidRecord, err)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: order quantity: %w", ErrInvalidRecord, err)
	}
	productName := strings.TrimSpace(parts[4])

	var customer *Customer
	for _, c := range customers {
		if c.PPS() == pps {
			customer = c
			break
		}
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: pps %s", ErrUnknownCustomer, pps)
	}

	var product *Product
	for _, p := range products {
		if p.Name() == productName {
			product = p
			break
		}
	}
	if product == nil {
		return nil, fmt.Errorf("%w: name %s", ErrUnknownProduct, productName)
	}

	order, err := NewOrderBuilder(customer, []*Product{product}).
		ID(id).
		Date(date).
		Quantity(quantity).
		Build()
	if err != nil {
		return nil, fmt.Errorf("parsing order record: %w", err)
	}
	return order, nil
}
