package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auction  AuctionConfig  `mapstructure:"auction"`
	Reaper   ReaperConfig   `mapstructure:"reaper"`
	Signer   SignerConfig   `mapstructure:"signer"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"dbname"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"` // per transaction
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the connection string in the form golang-migrate's pgx/v5 driver expects.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(d.DSN(), "postgres")
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type StorageConfig struct {
	Driver  string `mapstructure:"driver"` // postgres, memory
	Migrate bool   `mapstructure:"migrate"`
}

// AuctionConfig carries the bidding policy.
type AuctionConfig struct {
	FeePercent         string        `mapstructure:"fee_percent"`
	BiddingEnabled     bool          `mapstructure:"bidding_enabled"`
	DefaultDailyIntros uint16        `mapstructure:"default_daily_intros"`
	Cycle              time.Duration `mapstructure:"cycle"`
	Jitter             time.Duration `mapstructure:"jitter"`
}

// Fee returns the settlement fee percentage.
func (a AuctionConfig) Fee() (decimal.Decimal, error) {
	return parsePercent("auction.fee_percent", a.FeePercent)
}

type ReaperConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	IdleInterval time.Duration `mapstructure:"idle_interval"`
	LeaseTTL     time.Duration `mapstructure:"lease_ttl"`
}

type SignerConfig struct {
	Key string `mapstructure:"key"` // hex-encoded record signing key, 32-64 bytes
}

// KeyBytes decodes the record signing key.
func (s SignerConfig) KeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(s.Key)
	if err != nil {
		return nil, fmt.Errorf("signer.key: %w", err)
	}
	if len(key) < 32 || len(key) > 64 {
		return nil, fmt.Errorf("signer.key: must be 32-64 bytes, got %d", len(key))
	}
	return key, nil
}

type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Secret     string        `mapstructure:"secret"`
	Workers    int           `mapstructure:"workers"`
	QueueSize  int           `mapstructure:"queue_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type BridgeConfig struct {
	URL                string        `mapstructure:"url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	InboundFeePercent  string        `mapstructure:"inbound_fee_percent"`
	OutboundFeePercent string        `mapstructure:"outbound_fee_percent"`
}

func (b BridgeConfig) InboundFee() (decimal.Decimal, error) {
	return parsePercent("bridge.inbound_fee_percent", b.InboundFeePercent)
}

func (b BridgeConfig) OutboundFee() (decimal.Decimal, error) {
	return parsePercent("bridge.outbound_fee_percent", b.OutboundFeePercent)
}

func parsePercent(key, raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%s: must be within [0, 100], got %s", key, raw)
	}
	return p, nil
}

// Validate checks the values the ledger cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Auction.Fee(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Bridge.InboundFee(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Bridge.OutboundFee(); err != nil {
		errs = append(errs, err)
	}
	if c.Auction.DefaultDailyIntros < 1 || c.Auction.DefaultDailyIntros > 9 {
		errs = append(errs, fmt.Errorf("auction.default_daily_intros: must be within [1, 9]"))
	}
	if c.Auction.Jitter < 0 || c.Auction.Jitter >= c.Auction.Cycle {
		errs = append(errs, fmt.Errorf("auction.jitter: must be non-negative and shorter than auction.cycle"))
	}
	if c.Reaper.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("reaper.batch_size: must be positive"))
	}
	if _, err := c.Signer.KeyBytes(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: IA_ (Intro Auction).
// Nested keys use underscore: IA_DATABASE_HOST, IA_AUCTION_FEE_PERCENT, etc.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "intro_auction")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.lock_timeout", "5s")
	v.SetDefault("database.statement_timeout", "30s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "intro-auction")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.migrate", true)
	v.SetDefault("auction.fee_percent", "25")
	v.SetDefault("auction.bidding_enabled", true)
	v.SetDefault("auction.default_daily_intros", 4)
	v.SetDefault("auction.cycle", "24h")
	v.SetDefault("auction.jitter", "3h")
	v.SetDefault("reaper.batch_size", 1000)
	v.SetDefault("reaper.idle_interval", "10s")
	v.SetDefault("reaper.lease_ttl", "5m")
	v.SetDefault("signer.key", "")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.secret", "")
	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("bridge.url", "")
	v.SetDefault("bridge.timeout", "30s")
	v.SetDefault("bridge.inbound_fee_percent", "0")
	v.SetDefault("bridge.outbound_fee_percent", "0")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: IA_DATABASE_HOST -> database.host
	v.SetEnvPrefix("IA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
