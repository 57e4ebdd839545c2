package service

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/queue"
)

const adminEmail = "admin@example.com"

// failingBackend rejects writes to keys ending in failSuffix.
type failingBackend struct {
	*kvstore.Memory
	failSuffix string
}

func (f failingBackend) Set(ctx context.Context, key string, value []byte) error {
	if strings.HasSuffix(key, f.failSuffix) {
		return kvstore.ErrQuotaExceeded
	}
	return f.Memory.Set(ctx, key, value)
}

func newTestStore(t *testing.T, b kvstore.Backend) (*kvstore.Store, *logrus.Logger, *test.Hook) {
	t.Helper()
	if b == nil {
		b = kvstore.NewMemory()
	}
	log, hook := test.NewNullLogger()
	return kvstore.New(b, "cttm", log), log, hook
}

func newAuth(t *testing.T, store *kvstore.Store, log logrus.FieldLogger) *AuthService {
	t.Helper()
	return NewAuthService(store, AuthConfig{AdminEmail: adminEmail, BcryptCost: bcrypt.MinCost}, log)
}

type recordingPublisher struct {
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func ptr[T any](v T) *T { return &v }
