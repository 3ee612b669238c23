// Package app implements the store's business logic: the authoritative
// in-memory collections, the uniqueness rules the storage layer does not
// enforce, the purchase flow and the reporting operations.
package app

import "errors"

// Business-logic level errors.
var (
	ErrDuplicateCustomer  = errors.New("customer with this PPS or email already exists")
	ErrDuplicateProduct   = errors.New("product with this name already exists")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNoCurrentCustomer  = errors.New("no current customer selected")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
