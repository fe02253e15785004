package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staking_wallet_back/models"
)

func TestWalletMirrorRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	cli, err := NewRedisClient(ctx, RedisConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	mirror := NewWalletMirrorRedis(cli)
	require.NoError(t, cli.Del(ctx, mirror.key("W1")).Err())

	_, err = mirror.GetSnapshot(ctx, "W1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	applied, err := mirror.ApplySnapshot(ctx, models.WalletSnapshot{WalletAddress: "W1", ReferralCode: "AAAA0001", AmountStaked: "10", Version: 2})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = mirror.ApplySnapshot(ctx, models.WalletSnapshot{WalletAddress: "W1", AmountStaked: "5", Version: 1})
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := mirror.GetSnapshot(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "10", got.AmountStaked)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "AAAA0001", got.ReferralCode)
}
