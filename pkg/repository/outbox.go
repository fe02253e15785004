package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"staking_wallet_back/models"
)

type OutboxPostgres struct {
	db sqlx.ExtContext
}

func NewOutboxPostgres(db sqlx.ExtContext) *OutboxPostgres {
	return &OutboxPostgres{db: db}
}

func (r *OutboxPostgres) EnqueueMirrorEvent(ctx context.Context, event *models.MirrorEvent) error {
	query := `INSERT INTO mirror_events (id, wallet_address, version, payload)
		VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowxContext(ctx, query, event.ID, event.WalletAddress, event.Version, event.Payload).
		Scan(&event.CreatedAt)
	return errors.Wrap(mapError(err), "enqueue mirror event")
}

// PendingMirrorEvents locks up to limit unrelayed events, oldest first.
// Rows locked by another relay are skipped.
func (r *OutboxPostgres) PendingMirrorEvents(ctx context.Context, limit int) ([]models.MirrorEvent, error) {
	events := []models.MirrorEvent{}
	query := `SELECT id, wallet_address, version, payload, created_at, relayed_at
		FROM mirror_events
		WHERE relayed_at IS NULL
		ORDER BY created_at, version
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	if err := sqlx.SelectContext(ctx, r.db, &events, query, limit); err != nil {
		return nil, errors.Wrap(mapError(err), "pending mirror events")
	}
	return events, nil
}

func (r *OutboxPostgres) MarkMirrorEventsRelayed(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE mirror_events SET relayed_at = $1 WHERE id = ANY($2::uuid[])`
	if _, err := r.db.ExecContext(ctx, query, at, pq.Array(ids)); err != nil {
		return errors.Wrap(mapError(err), "mark mirror events relayed")
	}
	return nil
}
