package service

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/internal/wallet"
	"staking_wallet_back/pkg/repository"
)

const maxReferralCodeAttempts = 5

// withReferralCode runs fn with a freshly generated referral code and retries
// with a new one while the store reports a code collision.
func (d *deps) withReferralCode(fn func(code string) error) error {
	for attempt := 1; ; attempt++ {
		code, err := d.newCode()
		if err != nil {
			return errors.Wrap(err, "generate referral code")
		}

		err = fn(code)
		if !errors.Is(err, repository.ErrReferralCodeTaken) || attempt == maxReferralCodeAttempts {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"attempt":       attempt,
			"referral_code": code,
		}).Warn("referral code collision, regenerating")
	}
}

func (d *deps) checkAddress(address string) error {
	if !d.cfg.StrictAddresses {
		return nil
	}
	if err := wallet.ValidateAddress(address); err != nil {
		return validationError(MsgInvalidWalletAddress)
	}
	return nil
}

func (d *deps) checkTxHash(txHash string) error {
	if !d.cfg.StrictAddresses {
		return nil
	}
	if err := wallet.ValidateSignature(txHash); err != nil {
		return validationError(MsgInvalidTxHash)
	}
	return nil
}
