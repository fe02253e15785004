package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type cachedOwner struct {
	WalletAddress string
	Timestamp     time.Time
}

// ReferralOwnerCache maps referral codes to the wallet that owns them.
// A code never changes owner, so only the TTL bounds memory.
type ReferralOwnerCache struct {
	mu     sync.Mutex
	owners map[string]cachedOwner
	ttl    time.Duration
	now    func() time.Time
}

func NewReferralOwnerCache(ttl time.Duration) *ReferralOwnerCache {
	return &ReferralOwnerCache{
		owners: make(map[string]cachedOwner),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the owner from the cache or false if missing or stale.
func (c *ReferralOwnerCache) Get(code string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, ok := c.owners[code]
	if !ok {
		return "", false
	}
	if c.now().Sub(owner.Timestamp) > c.ttl {
		delete(c.owners, code)
		return "", false
	}

	logrus.WithField("referral_code", code).Debug("referral owner served from cache")
	return owner.WalletAddress, true
}

func (c *ReferralOwnerCache) Set(code, walletAddress string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.owners[code] = cachedOwner{
		WalletAddress: walletAddress,
		Timestamp:     c.now(),
	}
}

func (c *ReferralOwnerCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}
