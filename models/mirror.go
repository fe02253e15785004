package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// MirrorEvent is an outbox row carrying a full wallet snapshot for the Redis mirror.
type MirrorEvent struct {
	ID            uuid.UUID      `db:"id"`
	WalletAddress string         `db:"wallet_address"`
	Version       int64          `db:"version"`
	Payload       types.JSONText `db:"payload"`
	CreatedAt     time.Time      `db:"created_at"`
	RelayedAt     *time.Time     `db:"relayed_at"`
}

// WalletSnapshot is the mirrored view of a wallet.
type WalletSnapshot struct {
	WalletAddress     string     `json:"walletAddress"`
	ReferralCode      string     `json:"referralCode"`
	ReferralState     string     `json:"referralState"`
	Jreferal          string     `json:"jreferal"`
	AmountStaked      string     `json:"amount_staked"`
	LastTransactionAt *time.Time `json:"lastTransactionAt,omitempty"`
	Version           int64      `json:"version"`
}

func SnapshotOf(w WalletRecord) WalletSnapshot {
	return WalletSnapshot{
		WalletAddress:     w.WalletAddress,
		ReferralCode:      w.ReferralCode,
		ReferralState:     string(w.ReferralState),
		Jreferal:          w.ConsumedCode(),
		AmountStaked:      w.AmountStaked.String(),
		LastTransactionAt: w.LastTransactionAt,
		Version:           w.Version,
	}
}
