package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ivagate/internal/access"
	"ivagate/internal/avatar"
	"ivagate/internal/chat"
	"ivagate/internal/classifier"
	"ivagate/internal/mood"
	"ivagate/internal/notifier"
	"ivagate/internal/queue"
	"ivagate/internal/redis"
	"ivagate/internal/responses"
	"ivagate/internal/storage"
	"ivagate/internal/wallet"
)

const (
	DefaultPath = "config.yaml"
	EnvPrefix   = "IVA_"
)

type Config struct {
	Server    ServerConfig            `koanf:"server"`
	Access    access.Policy           `koanf:"access"`
	Mood      MoodConfig              `koanf:"mood"`
	Responses responses.Catalog       `koanf:"responses"`
	Avatar    AvatarConfig            `koanf:"avatar"`
	Chat      chat.Config             `koanf:"chat"`
	Wallet    wallet.Config           `koanf:"wallet"`
	Redis     redis.Config            `koanf:"redis"`
	Queue     queue.Config            `koanf:"queue"`
	Storage   storage.Config          `koanf:"storage"`
	Notifier  notifier.TelegramConfig `koanf:"notifier"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type MoodConfig struct {
	ThinkingAt float64 `koanf:"thinking_at"`
	HappyAt    float64 `koanf:"happy_at"`
	Extended   bool    `koanf:"extended"`
}

type AvatarConfig struct {
	Cooldown  time.Duration `koanf:"cooldown"`
	IdleDelay time.Duration `koanf:"idle_delay"`
	IdleGap   time.Duration `koanf:"idle_gap"`
}

func Default() *Config {
	ladder := mood.DefaultLadder()
	return &Config{
		Server: ServerConfig{Port: ":8080"},
		Access: access.DefaultPolicy(),
		Mood: MoodConfig{
			ThinkingAt: ladder.ThinkingAt,
			HappyAt:    ladder.HappyAt,
		},
		Responses: responses.DefaultCatalog(),
		Avatar: AvatarConfig{
			Cooldown:  avatar.DefaultCooldown,
			IdleDelay: 8 * time.Second,
			IdleGap:   5 * time.Second,
		},
		Chat: chat.DefaultConfig(),
		Wallet: wallet.Config{
			RPCURL:       wallet.DefaultRPCURL,
			PollInterval: wallet.DefaultPollInterval,
		},
		Redis: redis.Config{
			Addr:       "localhost:6379",
			BalanceTTL: time.Minute,
			BusyTTL:    2 * time.Minute,
		},
		Queue: queue.Config{
			Topic:   "iva.chat",
			GroupID: "iva-consumer",
		},
		Storage: storage.Config{
			Driver: "sqlite",
			DSN:    "data/iva.db",
		},
	}
}

// Load layers config.yaml (optional), then .env, then IVA_* variables over
// the defaults. Nested keys use a double underscore: IVA_ACCESS__FULL_ACCESS.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var listKeys = map[string]bool{
	"queue.brokers":     true,
	"notifier.chat_ids": true,
}

func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

func (c *Config) Validate() error {
	if err := c.Access.Validate(); err != nil {
		return err
	}
	if c.Mood.ThinkingAt > c.Mood.HappyAt {
		return fmt.Errorf("mood.thinking_at (%v) above mood.happy_at (%v)", c.Mood.ThinkingAt, c.Mood.HappyAt)
	}
	// the neutral and thinking bands sit inside the full tier
	if c.Mood.ThinkingAt < c.Access.FullAccess {
		return fmt.Errorf("mood.thinking_at (%v) below access.full_access (%v)", c.Mood.ThinkingAt, c.Access.FullAccess)
	}
	if err := c.Responses.Validate(); err != nil {
		return err
	}
	if c.Avatar.Cooldown < 0 {
		return fmt.Errorf("avatar.cooldown must not be negative")
	}
	return nil
}

func (c *Config) Ladder() mood.Ladder {
	return mood.Ladder{
		Policy:     c.Access,
		ThinkingAt: c.Mood.ThinkingAt,
		HappyAt:    c.Mood.HappyAt,
	}
}

// ClassifierOptions wires the access, mood and response sections into the
// engine.
func (c *Config) ClassifierOptions() classifier.Options {
	var opts []mood.Option
	if c.Mood.Extended {
		opts = append(opts, mood.WithExtendedMoods())
	}
	return classifier.Options{
		Policy:   c.Access,
		Ladder:   c.Ladder(),
		Catalog:  c.Responses,
		Analyzer: mood.NewAnalyzer(opts...),
	}
}

// WalletRegistry registers a watch-only adapter per configured address, in
// name order.
func (c *Config) WalletRegistry() *wallet.Registry {
	names := make([]string, 0, len(c.Wallet.Addresses))
	for name := range c.Wallet.Addresses {
		names = append(names, name)
	}
	slices.Sort(names)

	reg := wallet.NewRegistry()
	for _, name := range names {
		reg.Register(wallet.NewWatchOnly(name, c.Wallet.Addresses[name]))
	}
	return reg
}
