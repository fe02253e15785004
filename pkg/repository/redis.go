package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"staking_wallet_back/models"
)

type RedisConfig struct {
	URL      string
	Password string
	PoolSize int
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	cli := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return cli, nil
}

var ErrSnapshotNotFound = errors.New("wallet snapshot not found in mirror")

type Mirror interface {
	ApplySnapshot(ctx context.Context, snapshot models.WalletSnapshot) (bool, error)
	GetSnapshot(ctx context.Context, address string) (models.WalletSnapshot, error)
}

// applySnapshot writes the hash only when the incoming version is newer,
// which makes replays of the outbox harmless.
var applySnapshot = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
return 1
`)

type WalletMirrorRedis struct {
	client *redis.Client
	prefix string
}

func NewWalletMirrorRedis(client *redis.Client) *WalletMirrorRedis {
	return &WalletMirrorRedis{
		client: client,
		prefix: "wallet:",
	}
}

func (r *WalletMirrorRedis) ApplySnapshot(ctx context.Context, s models.WalletSnapshot) (bool, error) {
	lastTx := ""
	if s.LastTransactionAt != nil {
		lastTx = s.LastTransactionAt.UTC().Format(time.RFC3339Nano)
	}
	version := strconv.FormatInt(s.Version, 10)

	applied, err := applySnapshot.Run(ctx, r.client, []string{r.key(s.WalletAddress)},
		version,
		"wallet_address", s.WalletAddress,
		"referral_code", s.ReferralCode,
		"referral_state", s.ReferralState,
		"jreferal", s.Jreferal,
		"amount_staked", s.AmountStaked,
		"last_transaction_at", lastTx,
		"version", version,
	).Int()
	if err != nil {
		return false, errors.Wrap(err, "apply snapshot to redis")
	}
	return applied == 1, nil
}

func (r *WalletMirrorRedis) GetSnapshot(ctx context.Context, address string) (models.WalletSnapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key(address)).Result()
	if err != nil {
		return models.WalletSnapshot{}, errors.Wrap(err, "get snapshot from redis")
	}
	if len(fields) == 0 {
		return models.WalletSnapshot{}, ErrSnapshotNotFound
	}

	snapshot := models.WalletSnapshot{
		WalletAddress: fields["wallet_address"],
		ReferralCode:  fields["referral_code"],
		ReferralState: fields["referral_state"],
		Jreferal:      fields["jreferal"],
		AmountStaked:  fields["amount_staked"],
	}
	if v, err := strconv.ParseInt(fields["version"], 10, 64); err == nil {
		snapshot.Version = v
	}
	if ts := fields["last_transaction_at"]; ts != "" {
		if at, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			snapshot.LastTransactionAt = &at
		}
	}
	return snapshot, nil
}

func (r *WalletMirrorRedis) key(address string) string {
	return r.prefix + address
}
