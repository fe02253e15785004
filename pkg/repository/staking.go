package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"staking_wallet_back/models"
)

const stakingColumns = `id, tx_hash, wallet_address, amount, status, created_at, updated_at`

type StakingPostgres struct {
	db sqlx.ExtContext
}

func NewStakingPostgres(db sqlx.ExtContext) *StakingPostgres {
	return &StakingPostgres{db: db}
}

func (r *StakingPostgres) CreateStakingRecord(ctx context.Context, record *models.StakingRecord) error {
	if record.Status == "" {
		record.Status = models.StakePending
	}
	query, args, err := r.db.BindNamed(`
		INSERT INTO staking_records (tx_hash, wallet_address, amount, status)
		VALUES (:tx_hash, :wallet_address, :amount, :status)
		RETURNING id, created_at, updated_at`, record)
	if err != nil {
		return errors.Wrap(err, "bind create staking record")
	}
	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	return errors.Wrap(mapError(err), "create staking record")
}

// UpdateStakingStatus moves a pending record to a terminal status.
func (r *StakingPostgres) UpdateStakingStatus(ctx context.Context, txHash string, status models.StakeStatus) error {
	query := `UPDATE staking_records SET status = $2, updated_at = NOW()
		WHERE tx_hash = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, txHash, status)
	if err != nil {
		return errors.Wrap(mapError(err), "update staking status")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update staking status")
	}
	if rows == 0 {
		return errors.Wrapf(ErrNotFound, "no pending staking record %s", txHash)
	}
	return nil
}

func (r *StakingPostgres) GetStakingRecord(ctx context.Context, txHash string) (models.StakingRecord, error) {
	var record models.StakingRecord
	query := `SELECT ` + stakingColumns + ` FROM staking_records WHERE tx_hash = $1`
	err := sqlx.GetContext(ctx, r.db, &record, query, txHash)
	return record, errors.Wrap(mapError(err), "get staking record")
}

func (r *StakingPostgres) ListStakingRecords(ctx context.Context, address string, limit int) ([]models.StakingRecord, error) {
	records := []models.StakingRecord{}
	query := `SELECT ` + stakingColumns + ` FROM staking_records
		WHERE wallet_address = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	if err := sqlx.SelectContext(ctx, r.db, &records, query, address, limit); err != nil {
		return nil, errors.Wrap(mapError(err), "list staking records")
	}
	return records, nil
}
