package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/logger"
)

// Store reads and writes JSON documents through a Backend.  Keys are
// namespaced as "<prefix>_<key>".
//
// Read never reports malformed content: a document that fails to decode is
// logged and treated as absent, so callers fall back to their defaults.
// Backend read errors are still returned, because a caller that mistook an
// unreachable store for an empty one would overwrite real data on its next
// write.
type Store struct {
	backend Backend
	prefix  string
	log     logrus.FieldLogger
	mu      sync.Mutex
}

// New wraps backend.  An empty prefix leaves keys unchanged.
func New(backend Backend, prefix string, log logrus.FieldLogger) *Store {
	return &Store{backend: backend, prefix: prefix, log: logger.OrStandard(log)}
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + "_" + k
}

// Read decodes the document at key into dst and reports whether a usable
// document was found.  When it returns false the contents of dst are
// unspecified and the caller should use its default.
func (s *Store) Read(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.backend.Get(ctx, s.key(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %q: %w", key, err)
	}
	// a JSON null decodes cleanly but leaves dst zeroed
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WithField("key", s.key(key)).Warnf("kvstore: discarding malformed document: %v", err)
		return false, nil
	}
	return true, nil
}

// Write replaces the document at key with the JSON encoding of v.
func (s *Store) Write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStorageFailure, key, err)
	}
	if err := s.backend.Set(ctx, s.key(key), raw); err != nil {
		s.log.WithField("key", s.key(key)).Errorf("kvstore: write failed: %v", err)
		return fmt.Errorf("%w: write %q: %w", ErrStorageFailure, key, err)
	}
	return nil
}

// Remove deletes the document at key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.key(key)); err != nil {
		return fmt.Errorf("%w: delete %q: %w", ErrStorageFailure, key, err)
	}
	return nil
}

// Exclusive runs fn while holding the store's process-wide write lock.
// Every read-modify-write sequence goes through it; fn must not call
// Exclusive again.
func (s *Store) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Ping checks that the backend answers reads.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.backend.Get(ctx, s.key("healthz"))
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
