package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type StakeStatus string

const (
	StakePending   StakeStatus = "pending"
	StakeCompleted StakeStatus = "completed"
	StakeFailed    StakeStatus = "failed"
)

type StakingRecord struct {
	ID            int64           `db:"id" json:"id"`
	TxHash        string          `db:"tx_hash" json:"txHash"`
	WalletAddress string          `db:"wallet_address" json:"walletAddress"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Status        StakeStatus     `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

var ErrInvalidAmount = errors.New("invalid amount")

// Bounds of the NUMERIC(78,18) amount columns. Exponents are checked before
// anything expands the value, so huge exponents are rejected cheaply.
const (
	AmountScale       = 18
	maxIntegerDigits  = 78 - AmountScale
	minAmountExponent = -64
)

// StakeInput accepts amount either as a JSON number or a numeric string.
type StakeInput struct {
	WalletAddress string          `json:"walletAddress"`
	Amount        json.RawMessage `json:"amount"`
	TxHash        string          `json:"txHash"`
}

func (in StakeInput) ParseAmount() (decimal.Decimal, error) {
	raw := bytes.TrimSpace(in.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrInvalidAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		raw = bytes.TrimSpace([]byte(s))
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	exp := amount.Exponent()
	if exp < minAmountExponent || exp > maxIntegerDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	if int(exp)+amount.NumDigits() > maxIntegerDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp < -AmountScale {
		amount = amount.Round(AmountScale)
	}
	return amount, nil
}

type StakeResult struct {
	Success    bool         `json:"success"`
	UserWallet WalletRecord `json:"userWallet"`
}

type StakeInfo struct {
	AmountStaked decimal.Decimal `json:"amount_staked"`
	DaysStaked   int64           `json:"days_staked"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
}
