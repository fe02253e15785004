package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"staking_wallet_back/models"
)

type ReferralPostgres struct {
	db sqlx.ExtContext
}

func NewReferralPostgres(db sqlx.ExtContext) *ReferralPostgres {
	return &ReferralPostgres{db: db}
}

func (r *ReferralPostgres) GetReferralEntry(ctx context.Context, address string) (models.ReferralLedgerEntry, error) {
	var entry models.ReferralLedgerEntry
	query := `SELECT wallet_address, referral_code, has_skipped, created_at, updated_at
		FROM referral_ledger WHERE wallet_address = $1`
	err := sqlx.GetContext(ctx, r.db, &entry, query, address)
	return entry, errors.Wrap(mapError(err), "get referral entry")
}

func (r *ReferralPostgres) UpsertReferralEntry(ctx context.Context, entry *models.ReferralLedgerEntry) error {
	query, args, err := r.db.BindNamed(`
		INSERT INTO referral_ledger (wallet_address, referral_code, has_skipped)
		VALUES (:wallet_address, :referral_code, :has_skipped)
		ON CONFLICT (wallet_address) DO UPDATE
		SET referral_code = EXCLUDED.referral_code,
			has_skipped = EXCLUDED.has_skipped,
			updated_at = NOW()
		RETURNING created_at, updated_at`, entry)
	if err != nil {
		return errors.Wrap(err, "bind upsert referral entry")
	}
	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	return errors.Wrap(mapError(err), "upsert referral entry")
}
