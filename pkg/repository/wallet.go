package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"staking_wallet_back/models"
)

const walletColumns = `wallet_address, referral_code, referral_state, jreferal, amount_staked,
	last_transaction_at, is_admin, version, created_at, updated_at`

type WalletPostgres struct {
	db sqlx.ExtContext
}

func NewWalletPostgres(db sqlx.ExtContext) *WalletPostgres {
	return &WalletPostgres{db: db}
}

func (r *WalletPostgres) GetWallet(ctx context.Context, address string) (models.WalletRecord, error) {
	var wallet models.WalletRecord
	query := `SELECT ` + walletColumns + ` FROM wallet_records WHERE wallet_address = $1`
	err := sqlx.GetContext(ctx, r.db, &wallet, query, address)
	return wallet, errors.Wrap(mapError(err), "get wallet")
}

func (r *WalletPostgres) GetWalletForUpdate(ctx context.Context, address string) (models.WalletRecord, error) {
	var wallet models.WalletRecord
	query := `SELECT ` + walletColumns + ` FROM wallet_records WHERE wallet_address = $1 FOR UPDATE`
	err := sqlx.GetContext(ctx, r.db, &wallet, query, address)
	return wallet, errors.Wrap(mapError(err), "lock wallet")
}

func (r *WalletPostgres) GetWalletByReferralCode(ctx context.Context, code string) (models.WalletRecord, error) {
	var wallet models.WalletRecord
	query := `SELECT ` + walletColumns + ` FROM wallet_records WHERE referral_code = $1`
	err := sqlx.GetContext(ctx, r.db, &wallet, query, code)
	return wallet, errors.Wrap(mapError(err), "get wallet by referral code")
}

func (r *WalletPostgres) CreateWallet(ctx context.Context, wallet *models.WalletRecord) error {
	if wallet.ReferralState == "" {
		wallet.ReferralState = models.ReferralUndecided
	}
	query, args, err := r.db.BindNamed(`
		INSERT INTO wallet_records (wallet_address, referral_code, referral_state, jreferal,
			amount_staked, last_transaction_at, is_admin)
		VALUES (:wallet_address, :referral_code, :referral_state, :jreferal,
			:amount_staked, :last_transaction_at, :is_admin)
		RETURNING version, created_at, updated_at`, wallet)
	if err != nil {
		return errors.Wrap(err, "bind create wallet")
	}
	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&wallet.Version, &wallet.CreatedAt, &wallet.UpdatedAt)
	return errors.Wrap(mapError(err), "create wallet")
}

// EnsureWallet inserts a wallet with zeroed defaults unless it exists and
// returns the row locked for the rest of the transaction.
func (r *WalletPostgres) EnsureWallet(ctx context.Context, address, referralCode string) (models.WalletRecord, error) {
	query := `
		INSERT INTO wallet_records (wallet_address, referral_code)
		VALUES ($1, $2)
		ON CONFLICT (wallet_address) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, address, referralCode); err != nil {
		return models.WalletRecord{}, errors.Wrap(mapError(err), "ensure wallet")
	}
	return r.GetWalletForUpdate(ctx, address)
}

// SetReferralState records the referral decision. It only succeeds while the
// wallet is still undecided.
func (r *WalletPostgres) SetReferralState(ctx context.Context, address string, state models.ReferralState, jreferal *string) (models.WalletRecord, error) {
	var wallet models.WalletRecord
	query := `
		UPDATE wallet_records
		SET referral_state = $2, jreferal = $3, version = version + 1, updated_at = NOW()
		WHERE wallet_address = $1 AND referral_state = 'undecided'
		RETURNING ` + walletColumns
	err := sqlx.GetContext(ctx, r.db, &wallet, query, address, state, jreferal)
	if err = mapError(err); errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetWallet(ctx, address); getErr == nil {
			err = ErrStateConflict
		}
	}
	return wallet, errors.Wrap(err, "set referral state")
}

// AddStake atomically increments the staked amount, creating the wallet when absent.
func (r *WalletPostgres) AddStake(ctx context.Context, address string, amount decimal.Decimal, at time.Time, referralCode string) (models.WalletRecord, error) {
	var wallet models.WalletRecord
	query := `
		INSERT INTO wallet_records (wallet_address, referral_code, amount_staked, last_transaction_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_address) DO UPDATE
		SET amount_staked = wallet_records.amount_staked + EXCLUDED.amount_staked,
			last_transaction_at = EXCLUDED.last_transaction_at,
			version = wallet_records.version + 1,
			updated_at = NOW()
		RETURNING ` + walletColumns
	err := sqlx.GetContext(ctx, r.db, &wallet, query, address, referralCode, amount, at)
	return wallet, errors.Wrap(mapError(err), "add stake")
}
