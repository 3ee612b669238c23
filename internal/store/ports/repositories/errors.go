package repositories

import "errors"

// ErrNotFound is returned by mutating operations whose target row or record
// does not exist.
var ErrNotFound = errors.New("record not found")
