package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	walletsKey    = "iva:wallets"
	balancePrefix = "iva:balance:"
	busyPrefix    = "iva:busy:"
)

type Config struct {
	Addr       string        `koanf:"addr"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	BalanceTTL time.Duration `koanf:"balance_ttl"`
	BusyTTL    time.Duration `koanf:"busy_ttl"`
}

type Client struct {
	rdb        *redis.Client
	balanceTTL time.Duration
	busyTTL    time.Duration
}

func New(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	busyTTL := cfg.BusyTTL
	if busyTTL <= 0 {
		busyTTL = 2 * time.Minute
	}
	return &Client{rdb: rdb, balanceTTL: cfg.BalanceTTL, busyTTL: busyTTL}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Tracked wallets
func (c *Client) AddWallet(ctx context.Context, address string) error {
	return c.rdb.SAdd(ctx, walletsKey, address).Err()
}

func (c *Client) RemoveWallet(ctx context.Context, address string) error {
	pipe := c.rdb.TxPipeline()
	pipe.SRem(ctx, walletsKey, address)
	pipe.Del(ctx, balancePrefix+address)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Client) Wallets(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, walletsKey).Result()
}

func (c *Client) WalletExists(ctx context.Context, address string) (bool, error) {
	return c.rdb.SIsMember(ctx, walletsKey, address).Result()
}

// Balance snapshots
func (c *Client) SetBalance(ctx context.Context, address string, balance float64) error {
	v := strconv.FormatFloat(balance, 'f', -1, 64)
	return c.rdb.Set(ctx, balancePrefix+address, v, c.balanceTTL).Err()
}

// Balance returns the last polled balance; ok is false when none is cached
// or it expired.
func (c *Client) Balance(ctx context.Context, address string) (balance float64, ok bool, err error) {
	balance, err = c.rdb.Get(ctx, balancePrefix+address).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

// Busy locks, one per chat session. Each holder gets a random token and
// only the current holder can release, so a handler that outlived BusyTTL
// cannot free a lock taken after it expired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *Client) Acquire(ctx context.Context, sessionID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, busyPrefix+sessionID, token, c.busyTTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *Client) Release(ctx context.Context, sessionID, token string) error {
	return releaseScript.Run(ctx, c.rdb, []string{busyPrefix + sessionID}, token).Err()
}
