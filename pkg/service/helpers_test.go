package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/repository/repotest"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceCodes hands out the given codes first, then unique generated ones.
func sequenceCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n <= len(codes) {
			return codes[n-1], nil
		}
		return fmt.Sprintf("C%07X", n), nil
	}
}

type fixture struct {
	svc    *Service
	store  *repotest.Store
	mirror *repotest.Mirror
	clock  *testClock
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:  repotest.NewStore(),
		mirror: repotest.NewMirror(),
		clock:  &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(f.store.Repository(), f.mirror, Config{ReferralCacheTTL: time.Minute},
		WithClock(f.clock.Now),
		WithCodeGenerator(sequenceCodes(codes...)),
	)
	return f
}

func stakeInput(wallet, amount, txHash string) models.StakeInput {
	return models.StakeInput{
		WalletAddress: wallet,
		Amount:        json.RawMessage(amount),
		TxHash:        txHash,
	}
}
