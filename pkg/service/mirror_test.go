package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staking_wallet_back/models"
)

func TestRelayPendingAppliesLatestSnapshot(t *testing.T) {
	f := newFixture(t, "ABCD1234")
	ctx := context.Background()

	_, err := f.svc.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)
	_, err = f.svc.SubmitStake(ctx, stakeInput("W1", "25", "tx1"))
	require.NoError(t, err)
	_, err = f.svc.SkipReferral(ctx, models.SkipReferralInput{WalletAddress: "W1"})
	require.NoError(t, err)

	n, err := f.svc.RelayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	snapshot, err := f.svc.GetSnapshot(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "25", snapshot.AmountStaked)
	assert.Equal(t, string(models.ReferralSkipped), snapshot.ReferralState)
	assert.Equal(t, "ABCD1234", snapshot.ReferralCode)
	assert.Equal(t, int64(3), snapshot.Version)

	n, err = f.svc.RelayPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	for _, e := range f.store.MirrorEvents() {
		assert.NotNil(t, e.RelayedAt)
	}
}

func TestRelayPendingKeepsEventsOnMirrorFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)

	f.mirror.SetErr(errors.New("redis down"))
	n, err := f.svc.RelayPending(ctx)
	require.Error(t, err)
	assert.Zero(t, n)
	for _, e := range f.store.MirrorEvents() {
		assert.Nil(t, e.RelayedAt)
	}

	f.mirror.SetErr(nil)
	n, err = f.svc.RelayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetSnapshotNotMirrored(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSnapshot(context.Background(), "W1")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, MsgWalletNotMirrored, MessageOf(err, ""))

	_, err = f.svc.GetSnapshot(context.Background(), "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestErrorKinds(t *testing.T) {
	err := storageError(MsgStakeFailed, errors.New("pq: deadlock detected"))
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"))
	assert.Contains(t, err.Error(), "deadlock")

	assert.Equal(t, KindStorage, KindOf(errors.New("plain")))
	assert.Equal(t, KindConflict, KindOf(errors.Wrap(conflictError(MsgOwnReferralCode), "ctx")))
}
