// Package storage persists the ledger object. Implementations are
// interchangeable behind Store; the app picks one at startup.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the object does not exist yet.
var ErrNotFound = errors.New("object not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites any existing object under key.
	Put(ctx context.Context, key string, data []byte) error
}
