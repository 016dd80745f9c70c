package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"woodline/internal/domain/events"
	"woodline/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const outboxMaxRetries = 5

var _ events.Outbox = (*Outbox)(nil)

// Outbox writes notification events to the sys_outbox table in the
// caller's transaction, so events commit or roll back with the
// business change that produced them.
type Outbox struct {
	txManager *TxManager
}

// NewOutbox creates a transactional outbox store.
func NewOutbox(txManager *TxManager) *Outbox {
	return &Outbox{txManager: txManager}
}

// Enqueue stores events for later dispatch.
// MUST be called inside a transaction context.
func (o *Outbox) Enqueue(ctx context.Context, evs ...events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	queries := make([]BatchQuery, 0, len(evs))
	for _, ev := range evs {
		queries = append(queries, BatchQuery{
			SQL: `INSERT INTO sys_outbox (id, event_type, room, payload, status, created_at)
			      VALUES ($1, $2, $3, $4, $5, $6)`,
			Args: []any{ev.ID, ev.Type, ev.Room, []byte(ev.Payload), OutboxStatusPending, ev.CreatedAt},
		})
	}

	if err := NewBatchExecutor(o.txManager).ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("insert outbox events: %w", err)
	}
	return nil
}

// OutboxRelay reads pending events from the outbox and hands them to a
// publisher. Run by the background worker.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	batchSize int
	publisher events.Publisher
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(pool *pgxpool.Pool, batchSize int, publisher events.Publisher) *OutboxRelay {
	return &OutboxRelay{
		pool:      pool,
		batchSize: batchSize,
		publisher: publisher,
	}
}

// ProcessBatch fetches and dispatches pending events.
// Returns the number of events published.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, room, payload, retry_count, created_at
		FROM sys_outbox
		WHERE status = $1
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, OutboxStatusPending, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox events: %w", err)
	}
	defer rows.Close()

	type pendingEvent struct {
		ev         events.Event
		retryCount int
	}

	var pending []pendingEvent
	for rows.Next() {
		var p pendingEvent
		if err := rows.Scan(&p.ev.ID, &p.ev.Type, &p.ev.Room, &p.ev.Payload, &p.retryCount, &p.ev.CreatedAt); err != nil {
			return 0, fmt.Errorf("scan outbox event: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox events: %w", err)
	}

	published := 0
	for _, p := range pending {
		if err := r.dispatch(ctx, p.ev, p.retryCount); err != nil {
			logger.Warn(ctx, "outbox dispatch failed",
				"event_id", p.ev.ID,
				"event_type", p.ev.Type,
				"error", err,
			)
			continue
		}
		published++
	}

	return published, nil
}

func (r *OutboxRelay) dispatch(ctx context.Context, ev events.Event, retryCount int) error {
	if err := r.publisher.Publish(ctx, ev); err != nil {
		// Linear backoff, failed permanently after outboxMaxRetries.
		nextRetry := time.Now().UTC().Add(time.Duration(retryCount+1) * time.Minute)
		errStr := err.Error()

		_, updateErr := r.pool.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = CASE WHEN retry_count >= $3 THEN $4 ELSE status END
			WHERE id = $5
		`, errStr, nextRetry, outboxMaxRetries, OutboxStatusFailed, ev.ID)
		if updateErr != nil {
			return fmt.Errorf("mark event failed: %w", updateErr)
		}
		return err
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), ev.ID)
	return err
}

// PurgePublished deletes published events older than the retention window.
func (r *OutboxRelay) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sys_outbox
		WHERE status = $1 AND published_at < $2
	`, OutboxStatusPublished, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return result.RowsAffected(), nil
}
