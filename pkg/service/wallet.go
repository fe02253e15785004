package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/cache"
	"staking_wallet_back/pkg/repository"
)

type WalletService struct {
	repos  *repository.Repository
	owners *cache.ReferralOwnerCache
	*deps
}

func newWalletService(repos *repository.Repository, owners *cache.ReferralOwnerCache, d *deps) *WalletService {
	return &WalletService{
		repos:  repos,
		owners: owners,
		deps:   d,
	}
}

// Connect registers a wallet on first contact or reports its referral status.
func (s *WalletService) Connect(ctx context.Context, input models.ConnectInput) (models.ConnectResult, error) {
	address := input.WalletAddress
	if address == "" {
		return models.ConnectResult{}, validationError(MsgWalletAddressRequired)
	}
	if err := s.checkAddress(address); err != nil {
		return models.ConnectResult{}, err
	}
	code := strings.TrimSpace(input.ReferralCode)

	existing, err := s.repos.GetWallet(ctx, address)
	if err == nil {
		return s.connected(ctx, existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.ConnectResult{}, storageError(MsgInternalServerError, err)
	}

	created, err := s.register(ctx, address, code)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race with a concurrent connect for the same wallet
		existing, err = s.repos.GetWallet(ctx, address)
		if err != nil {
			return models.ConnectResult{}, storageError(MsgInternalServerError, err)
		}
		return s.connected(ctx, existing)
	}
	if err != nil {
		return models.ConnectResult{}, storageError(MsgInternalServerError, err)
	}

	logrus.WithFields(logrus.Fields{
		"wallet_address": address,
		"referral_code":  created.ReferralCode,
		"referred":       code != "",
	}).Info("wallet registered")

	return models.ConnectResult{
		Message:            MsgWalletConnected,
		IsNewUser:          true,
		ReferralCode:       created.ReferralCode,
		HasSkippedReferral: code == "",
		UserReferralCode:   created.ReferralCode,
		Jreferal:           nil,
	}, nil
}

func (s *WalletService) register(ctx context.Context, address, referredBy string) (models.WalletRecord, error) {
	var created models.WalletRecord
	err := s.withReferralCode(func(ownCode string) error {
		return s.repos.WithinTransaction(ctx, func(tx *repository.Repository) error {
			created = models.WalletRecord{
				WalletAddress: address,
				ReferralCode:  ownCode,
				ReferralState: models.ReferralUndecided,
			}
			entry := models.ReferralLedgerEntry{
				WalletAddress: address,
				HasSkipped:    referredBy == "",
			}
			if referredBy != "" {
				created.ReferralState = models.ReferralReferred
				created.Jreferal = &referredBy
				entry.ReferralCode = &referredBy
			}

			if err := tx.CreateWallet(ctx, &created); err != nil {
				return err
			}
			if err := tx.UpsertReferralEntry(ctx, &entry); err != nil {
				return err
			}
			return enqueueSnapshot(ctx, tx, created)
		})
	})
	return created, err
}

func (s *WalletService) connected(ctx context.Context, wallet models.WalletRecord) (models.ConnectResult, error) {
	if !wallet.ReferralState.Decided() {
		return models.ConnectResult{
			Message:            MsgWalletAlreadyConnected,
			IsNewUser:          false,
			NeedsReferral:      true,
			HasSkippedReferral: false,
			UserReferralCode:   wallet.ReferralCode,
			Jreferal:           wallet.Jreferal,
		}, nil
	}

	entry, err := s.repos.GetReferralEntry(ctx, wallet.WalletAddress)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.ConnectResult{}, storageError(MsgInternalServerError, err)
	}

	return models.ConnectResult{
		Message:            MsgWalletAlreadyConnected,
		IsNewUser:          false,
		NeedsReferral:      false,
		ReferralCode:       wallet.ReferralCode,
		HasSkippedReferral: entry.HasSkipped,
		UserReferralCode:   wallet.ReferralCode,
		Jreferal:           wallet.Jreferal,
	}, nil
}

// ValidateReferral is a read-only check of whether walletAddress may consume code.
func (s *WalletService) ValidateReferral(ctx context.Context, input models.ValidateReferralInput) (models.ReferralCheck, error) {
	code := strings.TrimSpace(input.ReferralCode)
	if code == "" || input.WalletAddress == "" {
		return models.ReferralCheck{}, validationError(MsgReferralFieldsRequired)
	}

	owner, err := s.referralOwner(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return models.ReferralCheck{Valid: false, Message: MsgInvalidReferralCode}, nil
	}
	if err != nil {
		return models.ReferralCheck{}, storageError(MsgReferralValidateFailed, err)
	}
	if owner == input.WalletAddress {
		return models.ReferralCheck{Valid: false, Message: MsgOwnReferralCode}, nil
	}

	wallet, err := s.repos.GetWallet(ctx, input.WalletAddress)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return models.ReferralCheck{}, storageError(MsgReferralValidateFailed, err)
	case wallet.ReferralState == models.ReferralReferred:
		return models.ReferralCheck{Valid: false, Message: MsgAlreadyReferred}, nil
	case wallet.ReferralState == models.ReferralSkipped:
		return models.ReferralCheck{Valid: false, Message: MsgReferralAlreadyDone}, nil
	}

	return models.ReferralCheck{Valid: true, Message: MsgValidReferralCode}, nil
}

// SubmitReferral consumes code for walletAddress. The wallet row is locked for
// the duration of the checks so the referral can be recorded at most once.
func (s *WalletService) SubmitReferral(ctx context.Context, input models.SubmitReferralInput) (models.SubmitReferralResult, error) {
	address := input.WalletAddress
	code := strings.TrimSpace(input.ReferralCode)
	if code == "" || address == "" {
		return models.SubmitReferralResult{}, validationError(MsgReferralFieldsRequired)
	}
	if err := s.checkAddress(address); err != nil {
		return models.SubmitReferralResult{}, err
	}

	owner, err := s.referralOwner(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return models.SubmitReferralResult{}, conflictError(MsgInvalidReferralCode)
	}
	if err != nil {
		return models.SubmitReferralResult{}, storageError(MsgReferralSubmitFailed, err)
	}
	if owner == address {
		return models.SubmitReferralResult{}, conflictError(MsgOwnReferralCode)
	}

	var updated models.WalletRecord
	err = s.withReferralCode(func(ownCode string) error {
		return s.repos.WithinTransaction(ctx, func(tx *repository.Repository) error {
			wallet, err := tx.EnsureWallet(ctx, address, ownCode)
			if err != nil {
				return err
			}
			switch wallet.ReferralState {
			case models.ReferralReferred:
				return conflictError(MsgAlreadyReferred)
			case models.ReferralSkipped:
				return conflictError(MsgReferralAlreadyDone)
			}

			updated, err = tx.SetReferralState(ctx, address, models.ReferralReferred, &code)
			if errors.Is(err, repository.ErrStateConflict) {
				return conflictError(MsgAlreadyReferred)
			}
			if err != nil {
				return err
			}

			entry := models.ReferralLedgerEntry{
				WalletAddress: address,
				ReferralCode:  &code,
				HasSkipped:    false,
			}
			if err := tx.UpsertReferralEntry(ctx, &entry); err != nil {
				return err
			}
			return enqueueSnapshot(ctx, tx, updated)
		})
	})
	if err != nil {
		if KindOf(err) == KindConflict {
			return models.SubmitReferralResult{}, err
		}
		return models.SubmitReferralResult{}, storageError(MsgReferralSubmitFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"wallet_address": address,
		"referred_by":    code,
		"referrer":       owner,
	}).Info("referral submitted")

	return models.SubmitReferralResult{
		Valid:        true,
		Message:      MsgReferralSubmitted,
		ReferralCode: updated.ReferralCode,
	}, nil
}

// SkipReferral records that the wallet declined to enter a referral code.
func (s *WalletService) SkipReferral(ctx context.Context, input models.SkipReferralInput) (models.SkipReferralResult, error) {
	address := input.WalletAddress
	if address == "" {
		return models.SkipReferralResult{}, validationError(MsgWalletAddressRequired)
	}

	var updated models.WalletRecord
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repository) error {
		wallet, err := tx.GetWalletForUpdate(ctx, address)
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(MsgUserNotFound)
		}
		if err != nil {
			return err
		}
		if wallet.ReferralState.Decided() {
			return conflictError(MsgReferralAlreadyDone)
		}

		updated, err = tx.SetReferralState(ctx, address, models.ReferralSkipped, nil)
		if errors.Is(err, repository.ErrStateConflict) {
			return conflictError(MsgReferralAlreadyDone)
		}
		if err != nil {
			return err
		}

		entry := models.ReferralLedgerEntry{
			WalletAddress: address,
			HasSkipped:    true,
		}
		if err := tx.UpsertReferralEntry(ctx, &entry); err != nil {
			return err
		}
		return enqueueSnapshot(ctx, tx, updated)
	})
	if err != nil {
		if kind := KindOf(err); kind == KindNotFound || kind == KindConflict {
			return models.SkipReferralResult{}, err
		}
		return models.SkipReferralResult{}, storageError(MsgInternalServerError, err)
	}

	logrus.WithField("wallet_address", address).Info("referral skipped")

	return models.SkipReferralResult{
		Message:      MsgReferralSkipped,
		ReferralCode: updated.ReferralCode,
	}, nil
}

func (s *WalletService) referralOwner(ctx context.Context, code string) (string, error) {
	if owner, ok := s.owners.Get(code); ok {
		return owner, nil
	}
	owner, err := s.repos.GetWalletByReferralCode(ctx, code)
	if err != nil {
		return "", err
	}
	s.owners.Set(code, owner.WalletAddress)
	return owner.WalletAddress, nil
}
