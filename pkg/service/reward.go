package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const daysPerYear = 365

// DefaultAnnualRate is the flat simple-interest rate applied to staked amounts.
var DefaultAnnualRate = decimal.RequireFromString("0.05")

// DaysStaked counts whole days elapsed since the last stake. A wallet that
// never staked, or a timestamp in the future, yields zero.
func DaysStaked(lastTransactionAt *time.Time, now time.Time) int64 {
	if lastTransactionAt == nil {
		return 0
	}
	elapsed := now.Sub(*lastTransactionAt)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / (24 * time.Hour))
}

// CalculateReward returns amount * (annualRate / 365) * days.
// The reward is never persisted; each new stake restarts the accrual window.
func CalculateReward(amount, annualRate decimal.Decimal, days int64) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return amount.
		Mul(annualRate).
		Mul(decimal.NewFromInt(days)).
		Div(decimal.NewFromInt(daysPerYear))
}
