package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func insertOutboxEvent(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (
			id, event_type, payload, status, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.RetryCount,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return err
}

func (r *outboxRepository) ProcessPending(ctx context.Context, limit, maxAttempts int, fn func(*model.OutboxEvent) error) (processed, failed int, err error) {
	start := time.Now()
	defer func() { r.observe("outbox.process_pending", start, err) }()

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var events []*model.OutboxEvent
		query := `
			SELECT id, event_type, payload, status, error_message, retry_count,
				   created_at, processed_at, updated_at
			FROM outbox_events
			WHERE status = $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`
		if err := tx.SelectContext(ctx, &events, query, string(model.OutboxStatusPending), limit); err != nil {
			return err
		}

		for _, evt := range events {
			if handleErr := fn(evt); handleErr != nil {
				msg := handleErr.Error()
				status := model.OutboxStatusPending
				if evt.RetryCount+1 >= maxAttempts {
					status = model.OutboxStatusFailed
				}
				if _, err := tx.ExecContext(ctx, `
					UPDATE outbox_events
					SET status = $1, error_message = $2, retry_count = retry_count + 1, updated_at = NOW()
					WHERE id = $3
				`, string(status), msg, evt.ID); err != nil {
					return err
				}
				failed++
				continue
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE outbox_events
				SET status = $1, error_message = NULL, processed_at = NOW(), updated_at = NOW()
				WHERE id = $2
			`, string(model.OutboxStatusProcessed), evt.ID); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, 0, apperrors.Persistence("process outbox events", err)
	}
	return processed, failed, nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (n int64, err error) {
	start := time.Now()
	defer func() { r.observe("outbox.cleanup", start, err) }()

	query := `
		DELETE FROM outbox_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Persistence("delete processed events", err)
	}
	return result.RowsAffected()
}
