// Package secret defines the secret reference service. Secrets are addressed by an opaque
// reference; only the reference is ever placed on a relation.
package secret

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("secret: reference not found")
	ErrEmptyContent = errors.New("secret: content must not be empty")
)

type Store interface {
	// Create stores content under a new reference.
	Create(ctx context.Context, label string, content map[string]string) (string, error)
	// Grant allows the counterpart of relationID to read the secret.
	Grant(ctx context.Context, reference, relationID string) error
	// Resolve returns the content stored under reference.
	Resolve(ctx context.Context, reference string) (map[string]string, error)
	// Remove deletes the secret. Removing an unknown reference is not an error.
	Remove(ctx context.Context, reference string) error
}
