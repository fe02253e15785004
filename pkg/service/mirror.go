package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/repository"
)

// enqueueSnapshot writes the wallet's current state to the outbox in the
// caller's transaction.
func enqueueSnapshot(ctx context.Context, tx *repository.Repository, wallet models.WalletRecord) error {
	payload, err := json.Marshal(models.SnapshotOf(wallet))
	if err != nil {
		return errors.Wrap(err, "marshal wallet snapshot")
	}
	event := models.MirrorEvent{
		ID:            uuid.New(),
		WalletAddress: wallet.WalletAddress,
		Version:       wallet.Version,
		Payload:       payload,
	}
	return tx.EnqueueMirrorEvent(ctx, &event)
}

type MirrorService struct {
	repos  *repository.Repository
	mirror repository.Mirror
	*deps
}

func newMirrorService(repos *repository.Repository, mirror repository.Mirror, d *deps) *MirrorService {
	return &MirrorService{
		repos:  repos,
		mirror: mirror,
		deps:   d,
	}
}

// RelayPending copies one batch of outbox events to the mirror and marks the
// delivered ones relayed. Delivery stops at the first mirror error so events
// for a wallet are never applied out of order.
func (s *MirrorService) RelayPending(ctx context.Context) (int, error) {
	var relayed int
	var mirrorErr error

	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repository) error {
		events, err := tx.PendingMirrorEvents(ctx, s.cfg.MirrorBatchSize)
		if err != nil {
			return err
		}

		done := make([]string, 0, len(events))
		for _, event := range events {
			var snapshot models.WalletSnapshot
			if err := json.Unmarshal(event.Payload, &snapshot); err != nil {
				logrus.WithError(err).WithField("event_id", event.ID).Error("dropping malformed mirror event")
				done = append(done, event.ID.String())
				continue
			}
			applied, err := s.mirror.ApplySnapshot(ctx, snapshot)
			if err != nil {
				mirrorErr = err
				break
			}
			if applied {
				relayed++
			}
			done = append(done, event.ID.String())
		}
		return tx.MarkMirrorEventsRelayed(ctx, done, s.now())
	})
	if err != nil {
		return 0, errors.Wrap(err, "relay mirror events")
	}
	if mirrorErr != nil {
		return relayed, errors.Wrap(mirrorErr, "apply mirror snapshot")
	}
	return relayed, nil
}

func (s *MirrorService) GetSnapshot(ctx context.Context, walletAddress string) (models.WalletSnapshot, error) {
	if walletAddress == "" {
		return models.WalletSnapshot{}, validationError(MsgWalletAddressRequired)
	}
	snapshot, err := s.mirror.GetSnapshot(ctx, walletAddress)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return models.WalletSnapshot{}, notFoundError(MsgWalletNotMirrored)
	}
	if err != nil {
		return models.WalletSnapshot{}, storageError(MsgInternalServerError, err)
	}
	return snapshot, nil
}
