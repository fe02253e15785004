package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/models"
)

type Wallet interface {
	GetWallet(ctx context.Context, address string) (models.WalletRecord, error)
	GetWalletForUpdate(ctx context.Context, address string) (models.WalletRecord, error)
	GetWalletByReferralCode(ctx context.Context, code string) (models.WalletRecord, error)
	CreateWallet(ctx context.Context, wallet *models.WalletRecord) error
	EnsureWallet(ctx context.Context, address, referralCode string) (models.WalletRecord, error)
	SetReferralState(ctx context.Context, address string, state models.ReferralState, jreferal *string) (models.WalletRecord, error)
	AddStake(ctx context.Context, address string, amount decimal.Decimal, at time.Time, referralCode string) (models.WalletRecord, error)
}

type Referral interface {
	GetReferralEntry(ctx context.Context, address string) (models.ReferralLedgerEntry, error)
	UpsertReferralEntry(ctx context.Context, entry *models.ReferralLedgerEntry) error
}

type Staking interface {
	CreateStakingRecord(ctx context.Context, record *models.StakingRecord) error
	UpdateStakingStatus(ctx context.Context, txHash string, status models.StakeStatus) error
	GetStakingRecord(ctx context.Context, txHash string) (models.StakingRecord, error)
	ListStakingRecords(ctx context.Context, address string, limit int) ([]models.StakingRecord, error)
}

type Outbox interface {
	EnqueueMirrorEvent(ctx context.Context, event *models.MirrorEvent) error
	PendingMirrorEvents(ctx context.Context, limit int) ([]models.MirrorEvent, error)
	MarkMirrorEventsRelayed(ctx context.Context, ids []string, at time.Time) error
}

// Transactor runs fn against repositories bound to a single transaction.
// A nested call joins the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repository) error) error
}

type Repository struct {
	Wallet
	Referral
	Staking
	Outbox
	Transactor
}

func NewRepository(db *sqlx.DB) *Repository {
	repos := newRepository(db)
	repos.Transactor = &postgresTransactor{db: db}
	return repos
}

func newRepository(ext sqlx.ExtContext) *Repository {
	return &Repository{
		Wallet:   NewWalletPostgres(ext),
		Referral: NewReferralPostgres(ext),
		Staking:  NewStakingPostgres(ext),
		Outbox:   NewOutboxPostgres(ext),
	}
}

type postgresTransactor struct {
	db *sqlx.DB
}

func (t *postgresTransactor) WithinTransaction(ctx context.Context, fn func(repos *Repository) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	repos := newRepository(tx)
	repos.Transactor = joinedTransactor{repos: repos}

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Error("failed to rollback transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

type joinedTransactor struct {
	repos *Repository
}

func (t joinedTransactor) WithinTransaction(_ context.Context, fn func(repos *Repository) error) error {
	return fn(t.repos)
}
