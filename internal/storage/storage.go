// Package storage is the key/value port the cart and session stores persist through.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove is a no-op for a missing key.
	Remove(ctx context.Context, key string) error
}
