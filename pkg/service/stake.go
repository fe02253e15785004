package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/repository"
)

type StakeService struct {
	repos *repository.Repository
	*deps
}

func newStakeService(repos *repository.Repository, d *deps) *StakeService {
	return &StakeService{
		repos: repos,
		deps:  d,
	}
}

// SubmitStake records a stake transaction and adds its amount to the wallet.
// The staking record is created pending; balance, status and mirror event are
// then committed together. Any failure after the record exists marks it failed.
func (s *StakeService) SubmitStake(ctx context.Context, input models.StakeInput) (models.StakeResult, error) {
	if input.TxHash == "" {
		return models.StakeResult{}, validationError(MsgTxHashRequired)
	}
	amount, err := input.ParseAmount()
	if err != nil {
		return models.StakeResult{}, validationError(MsgInvalidAmount)
	}
	if input.WalletAddress == "" {
		return models.StakeResult{}, validationError(MsgWalletAddressRequired)
	}
	if err := s.checkAddress(input.WalletAddress); err != nil {
		return models.StakeResult{}, err
	}
	if err := s.checkTxHash(input.TxHash); err != nil {
		return models.StakeResult{}, err
	}

	log := logrus.WithFields(logrus.Fields{
		"wallet_address": input.WalletAddress,
		"tx_hash":        input.TxHash,
		"amount":         amount.String(),
	})

	record := models.StakingRecord{
		TxHash:        input.TxHash,
		WalletAddress: input.WalletAddress,
		Amount:        amount,
		Status:        models.StakePending,
	}
	if err := s.repos.CreateStakingRecord(ctx, &record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.StakeResult{}, conflictError(MsgDuplicateTransaction)
		}
		return models.StakeResult{}, storageError(MsgStakeFailed, err)
	}

	var wallet models.WalletRecord
	err = s.withReferralCode(func(code string) error {
		return s.repos.WithinTransaction(ctx, func(tx *repository.Repository) error {
			var err error
			wallet, err = tx.AddStake(ctx, input.WalletAddress, amount, s.now(), code)
			if err != nil {
				return err
			}
			if err := tx.UpdateStakingStatus(ctx, input.TxHash, models.StakeCompleted); err != nil {
				return err
			}
			return enqueueSnapshot(ctx, tx, wallet)
		})
	})
	if err != nil {
		s.markFailed(ctx, input.TxHash)
		if errors.Is(err, repository.ErrOutOfRange) {
			log.Warn("stake would overflow staked balance")
			return models.StakeResult{}, validationError(MsgInvalidAmount)
		}
		log.WithError(err).Error("stake submission failed")
		return models.StakeResult{}, storageError(MsgStakeFailed, err)
	}

	log.WithField("amount_staked", wallet.AmountStaked.String()).Info("stake recorded")
	return models.StakeResult{Success: true, UserWallet: wallet}, nil
}

// markFailed is a best-effort compensation; its own failure is only logged.
func (s *StakeService) markFailed(ctx context.Context, txHash string) {
	if err := s.repos.UpdateStakingStatus(context.WithoutCancel(ctx), txHash, models.StakeFailed); err != nil {
		logrus.WithError(err).WithField("tx_hash", txHash).Error("failed to mark staking record failed")
	}
}

// GetStakeInfo derives the reward accrued since the last stake. Unknown
// wallets report zeros.
func (s *StakeService) GetStakeInfo(ctx context.Context, walletAddress string) (models.StakeInfo, error) {
	if walletAddress == "" {
		return models.StakeInfo{}, validationError(MsgWalletAddressRequired)
	}

	wallet, err := s.repos.GetWallet(ctx, walletAddress)
	if errors.Is(err, repository.ErrNotFound) {
		return models.StakeInfo{}, nil
	}
	if err != nil {
		return models.StakeInfo{}, storageError(MsgStakeInfoFailed, err)
	}

	days := DaysStaked(wallet.LastTransactionAt, s.now())
	return models.StakeInfo{
		AmountStaked: wallet.AmountStaked,
		DaysStaked:   days,
		RewardAmount: CalculateReward(wallet.AmountStaked, s.cfg.AnnualRate, days),
	}, nil
}

func (s *StakeService) ListStakes(ctx context.Context, walletAddress string) ([]models.StakingRecord, error) {
	if walletAddress == "" {
		return nil, validationError(MsgWalletAddressRequired)
	}
	records, err := s.repos.ListStakingRecords(ctx, walletAddress, s.cfg.StakeHistoryLimit)
	if err != nil {
		return nil, storageError(MsgInternalServerError, err)
	}
	return records, nil
}
