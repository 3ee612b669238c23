// Package services defines the service interfaces used by the store's
// business logic.
package services

import "context"

// PasswordService hashes and verifies customer passwords. Only hashes are
// ever stored.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}
