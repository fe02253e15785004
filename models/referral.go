package models

import "time"

type ReferralLedgerEntry struct {
	WalletAddress string    `db:"wallet_address" json:"walletAddress"`
	ReferralCode  *string   `db:"referral_code" json:"referralCode"` // code that referred the wallet
	HasSkipped    bool      `db:"has_skipped" json:"hasSkipped"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type ValidateReferralInput struct {
	ReferralCode  string `json:"referralCode"`
	WalletAddress string `json:"walletAddress"`
}

type ReferralCheck struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type SubmitReferralInput struct {
	WalletAddress string `json:"walletAddress"`
	ReferralCode  string `json:"referralCode"`
}

type SubmitReferralResult struct {
	Valid        bool   `json:"valid"`
	Message      string `json:"message"`
	ReferralCode string `json:"referralCode"`
}

type SkipReferralInput struct {
	WalletAddress string `json:"walletAddress"`
}

type SkipReferralResult struct {
	Message      string `json:"message"`
	ReferralCode string `json:"referralCode"`
}
