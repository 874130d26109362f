package outbox

import (
	"context"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Store is the part of the outbox repository the relay needs.
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Relay moves committed outbox events to the broker. An event is marked sent
// only after a successful publish, so delivery is at-least-once.
type Relay struct {
	store        Store
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
}

// NewRelay creates a new outbox relay.
func NewRelay(store Store, publisher Publisher, pollInterval time.Duration, batchSize int, logger zerolog.Logger) *Relay {
	return &Relay{
		store:        store,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger.With().Str("component", "outbox-relay").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	t := time.NewTicker(r.pollInterval)
	defer t.Stop()

	r.logger.Info().Dur("poll_interval", r.pollInterval).Int("batch_size", r.batchSize).Msg("outbox relay started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return
		case <-t.C:
			if _, err := r.tick(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error().Err(err).Msg("outbox tick failed")
			}
		}
	}
}

// tick publishes one batch and returns how many events were marked sent.
// A failed publish leaves its event pending for the next tick.
func (r *Relay) tick(ctx context.Context) (int, error) {
	events, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	metrics.OutboxPending.Set(float64(len(events)))

	sent := 0
	for _, e := range events {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := r.publisher.Publish(pubCtx, e.EventType, e.Payload, amqp.Table{
			"x-outbox-id":    e.ID.String(),
			"x-aggregate-id": e.AggregateID,
		})
		cancel()

		if err != nil {
			metrics.OutboxPublishErrorsTotal.Inc()
			r.logger.Error().Err(err).Str("id", e.ID.String()).Str("type", e.EventType).Msg("publish failed, will retry")
			continue
		}

		if err := r.store.MarkSent(ctx, e.ID); err != nil {
			return sent, err
		}
		metrics.OutboxSentTotal.Inc()
		sent++
	}

	if sent > 0 {
		r.logger.Debug().Int("sent", sent).Msg("outbox batch published")
	}
	return sent, nil
}
