package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/pkg/logger"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
)

type memBroker struct {
	mu   sync.Mutex
	subs []chan []byte
	fail error
}

func (b *memBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if b.fail != nil {
		return b.fail
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s <- payload
	}
	return nil
}

func (b *memBroker) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (b *memBroker) Close() error { return nil }

func (b *memBroker) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func listing() []*model.AppointmentDetail {
	return []*model.AppointmentDetail{{Appointment: model.Appointment{Base: model.Base{ID: uuid.New()}}}}
}

func TestGetSetInvalidate(t *testing.T) {
	m := metrics.NewMetrics(nil, "test")
	c := NewListingCache(Options{TTL: time.Minute, Metrics: m, Logger: logger.Nop()})
	clinicID := uuid.New()

	_, ok := c.Get(clinicID)
	assert.False(t, ok)

	want := listing()
	c.Set(clinicID, want)
	got, ok := c.Get(clinicID)
	require.True(t, ok)
	assert.Equal(t, want, got)

	c.Invalidate(context.Background(), clinicID)
	_, ok = c.Get(clinicID)
	assert.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
}

func TestInvalidationReachesOtherInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := &memBroker{}
	a := NewListingCache(Options{Broker: broker, Channel: "inv", Logger: logger.Nop()})
	b := NewListingCache(Options{Broker: broker, Channel: "inv", Logger: logger.Nop()})

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, b.Listen(ctx))
	}()
	require.Eventually(t, func() bool { return broker.subscribers() == 1 }, time.Second, 5*time.Millisecond)

	clinicID, other := uuid.New(), uuid.New()
	b.Set(clinicID, listing())
	b.Set(other, listing())

	a.Invalidate(ctx, clinicID)

	assert.Eventually(t, func() bool {
		_, ok := b.Get(clinicID)
		return !ok
	}, time.Second, 5*time.Millisecond)
	_, ok := b.Get(other)
	assert.True(t, ok)

	cancel()
	<-done
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	broker := &memBroker{fail: errors.New("redis down")}
	c := NewListingCache(Options{Broker: broker, Channel: "inv", Logger: logger.Nop()})
	clinicID := uuid.New()
	c.Set(clinicID, listing())

	c.Invalidate(context.Background(), clinicID)

	_, ok := c.Get(clinicID)
	assert.False(t, ok)
}

func TestListenWithoutBroker(t *testing.T) {
	c := NewListingCache(Options{Logger: logger.Nop()})
	assert.NoError(t, c.Listen(context.Background()))
}
