package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/cache"
	"staking_wallet_back/pkg/repository"
	"staking_wallet_back/pkg/utils"
)

type Wallet interface {
	Connect(ctx context.Context, input models.ConnectInput) (models.ConnectResult, error)
	ValidateReferral(ctx context.Context, input models.ValidateReferralInput) (models.ReferralCheck, error)
	SubmitReferral(ctx context.Context, input models.SubmitReferralInput) (models.SubmitReferralResult, error)
	SkipReferral(ctx context.Context, input models.SkipReferralInput) (models.SkipReferralResult, error)
}

type Stake interface {
	SubmitStake(ctx context.Context, input models.StakeInput) (models.StakeResult, error)
	GetStakeInfo(ctx context.Context, walletAddress string) (models.StakeInfo, error)
	ListStakes(ctx context.Context, walletAddress string) ([]models.StakingRecord, error)
}

type Mirror interface {
	RelayPending(ctx context.Context) (int, error)
	GetSnapshot(ctx context.Context, walletAddress string) (models.WalletSnapshot, error)
}

type Service struct {
	Wallet
	Stake
	Mirror
}

type Config struct {
	AnnualRate        decimal.Decimal
	ReferralCacheTTL  time.Duration
	StrictAddresses   bool
	MirrorBatchSize   int
	StakeHistoryLimit int
}

func (c Config) withDefaults() Config {
	if c.AnnualRate.IsZero() {
		c.AnnualRate = DefaultAnnualRate
	}
	if c.MirrorBatchSize <= 0 {
		c.MirrorBatchSize = 100
	}
	if c.StakeHistoryLimit <= 0 {
		c.StakeHistoryLimit = 50
	}
	return c
}

type Option func(*deps)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithCodeGenerator overrides referral code generation.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(d *deps) { d.newCode = gen }
}

// deps is shared by all services built by NewService.
type deps struct {
	cfg     Config
	now     func() time.Time
	newCode func() (string, error)
}

func NewService(repos *repository.Repository, mirror repository.Mirror, cfg Config, opts ...Option) *Service {
	d := &deps{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		newCode: utils.GenerateReferralCode,
	}
	for _, opt := range opts {
		opt(d)
	}

	return &Service{
		Wallet: newWalletService(repos, cache.NewReferralOwnerCache(d.cfg.ReferralCacheTTL), d),
		Stake:  newStakeService(repos, d),
		Mirror: newMirrorService(repos, mirror, d),
	}
}
