package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralState is the write-once referral decision of a wallet.
type ReferralState string

const (
	ReferralUndecided ReferralState = "undecided"
	ReferralSkipped   ReferralState = "skipped"
	ReferralReferred  ReferralState = "referred"
)

// Decided reports whether the wallet has already referred or skipped.
func (s ReferralState) Decided() bool {
	return s == ReferralSkipped || s == ReferralReferred
}

type WalletRecord struct {
	WalletAddress     string          `db:"wallet_address" json:"walletAddress"`
	ReferralCode      string          `db:"referral_code" json:"referralCode"`
	ReferralState     ReferralState   `db:"referral_state" json:"referralState"`
	Jreferal          *string         `db:"jreferal" json:"jreferal"` // code consumed, set only when referred
	AmountStaked      decimal.Decimal `db:"amount_staked" json:"amount_staked"`
	LastTransactionAt *time.Time      `db:"last_transaction_at" json:"lastTransactionAt"`
	IsAdmin           bool            `db:"is_admin" json:"isAdmin"`
	Version           int64           `db:"version" json:"version"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// ConsumedCode returns the referral code this wallet used, or "" if none.
func (w WalletRecord) ConsumedCode() string {
	if w.Jreferal == nil {
		return ""
	}
	return *w.Jreferal
}

type ConnectInput struct {
	WalletAddress string `json:"walletAddress"`
	ReferralCode  string `json:"referralCode"`
}

type ConnectResult struct {
	Message            string  `json:"message"`
	IsNewUser          bool    `json:"isNewUser"`
	NeedsReferral      bool    `json:"needsReferral"`
	ReferralCode       string  `json:"referralCode,omitempty"`
	HasSkippedReferral bool    `json:"hasSkippedReferral"`
	UserReferralCode   string  `json:"userReferralCode"`
	Jreferal           *string `json:"jreferal"`
}
