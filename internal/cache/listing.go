// Package cache keeps each clinic's appointment listing in memory and
// propagates invalidations to other instances through the message broker.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-admin/internal/model"
	"github.com/jwalitptl/clinic-admin/pkg/messaging"
	"github.com/jwalitptl/clinic-admin/pkg/metrics"
)

// invalidation is the message published when a clinic's listing changes.
type invalidation struct {
	ClinicID uuid.UUID `json:"clinic_id"`
	Origin   string    `json:"origin"`
}

type ListingCache struct {
	store   *gocache.Cache
	broker  messaging.Broker
	channel string
	origin  string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	// Broker is optional; without it invalidations stay local.
	Broker  messaging.Broker
	Channel string
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

func NewListingCache(opts Options) *ListingCache {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * opts.TTL
	}
	return &ListingCache{
		store:   gocache.New(opts.TTL, opts.CleanupInterval),
		broker:  opts.Broker,
		channel: opts.Channel,
		origin:  uuid.NewString(),
		metrics: opts.Metrics,
		logger:  opts.Logger.With().Str("component", "listing-cache").Logger(),
	}
}

func (c *ListingCache) Get(clinicID uuid.UUID) ([]*model.AppointmentDetail, bool) {
	v, ok := c.store.Get(clinicID.String())
	if !ok {
		if c.metrics != nil {
			c.metrics.CacheMisses.Inc()
		}
		return nil, false
	}
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
	return v.([]*model.AppointmentDetail), true
}

func (c *ListingCache) Set(clinicID uuid.UUID, listing []*model.AppointmentDetail) {
	c.store.SetDefault(clinicID.String(), listing)
}

// Invalidate drops the clinic's listing here and announces it to the other
// instances. Publish failures are logged, never returned.
func (c *ListingCache) Invalidate(ctx context.Context, clinicID uuid.UUID) {
	c.drop(clinicID, "local")

	if c.broker == nil {
		return
	}
	msg := invalidation{ClinicID: clinicID, Origin: c.origin}
	if err := c.broker.Publish(ctx, c.channel, msg); err != nil {
		c.logger.Warn().Err(err).Str("clinic_id", clinicID.String()).Msg("failed to publish invalidation")
	}
}

func (c *ListingCache) drop(clinicID uuid.UUID, origin string) {
	c.store.Delete(clinicID.String())
	if c.metrics != nil {
		c.metrics.CacheInvalidations.WithLabelValues(origin).Inc()
	}
}

// Listen applies invalidations published by other instances until ctx is
// done. It returns immediately when no broker is configured.
func (c *ListingCache) Listen(ctx context.Context) error {
	if c.broker == nil {
		return nil
	}
	msgs, err := c.broker.Subscribe(ctx, c.channel)
	if err != nil {
		return err
	}

	for payload := range msgs {
		var msg invalidation
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed invalidation")
			continue
		}
		if msg.Origin == c.origin {
			continue
		}
		c.drop(msg.ClinicID, "remote")
	}
	return nil
}
