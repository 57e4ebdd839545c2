// Package kvstore is the durable string-keyed blob store the booking core
// persists into.  Every key holds one JSON document; callers always read and
// replace whole documents.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrQuotaExceeded is returned by size-limited backends when a write would
// grow the store past its quota.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// ErrStorageFailure wraps every write rejected by a backend.  Callers test
// for it with errors.Is.
var ErrStorageFailure = errors.New("storage failure")

// Backend is the raw byte store behind Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
