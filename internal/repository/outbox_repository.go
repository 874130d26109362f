package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type outboxRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOutboxRepository creates a new PostgreSQL-backed outbox.
func NewOutboxRepository(pool *pgxpool.Pool, logger zerolog.Logger) OutboxRepository {
	return &outboxRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "outbox").Logger(),
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, tx pgx.Tx, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query, event.ID, event.AggregateID, event.EventType, []byte(event.Payload)).
		Scan(&event.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Int64("aggregate_id", event.AggregateID).
			Msg("failed to enqueue event")
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	return nil
}

func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at, sent_at
		FROM outbox_events
		WHERE sent_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var ev model.OutboxEvent
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &payload, &ev.CreatedAt, &ev.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Payload = payload
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox_events SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", id.String()).Msg("failed to mark event sent")
		return fmt.Errorf("failed to mark event sent: %w", err)
	}
	return nil
}
