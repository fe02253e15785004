package repository

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrReferralCodeTaken = errors.New("referral code already taken")
	ErrStateConflict     = errors.New("record changed concurrently")
	ErrOutOfRange        = errors.New("numeric value out of range")
)

const (
	uniqueViolation              = "23505"
	numericValueOutOfRange       = "22003"
	referralCodeUniqueConstraint = "wallet_records_referral_code_key"
)

// mapError translates driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		if pqErr.Constraint == referralCodeUniqueConstraint {
			return ErrReferralCodeTaken
		}
		return ErrDuplicate
	case numericValueOutOfRange:
		return ErrOutOfRange
	}
	return err
}
