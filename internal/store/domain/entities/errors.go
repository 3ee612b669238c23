package entities

import "errors"

// Validation and reference-resolution errors shared by the entity builders
// and record codecs.
var (
	ErrValidation      = errors.New("entity validation failed")
	ErrInvalidRecord   = errors.New("invalid record format")
	ErrUnknownCustomer = errors.New("customer reference not found")
	ErrUnknownProduct  = errors.New("product reference not found")
)
