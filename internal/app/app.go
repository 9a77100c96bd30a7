// Package app wires configuration into the services shared by the API server
// and the reaper process.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"intro-auction/config"
	"intro-auction/internal/adapter/bridge"
	"intro-auction/internal/adapter/storage/memory"
	pgStorage "intro-auction/internal/adapter/storage/postgres"
	redisStorage "intro-auction/internal/adapter/storage/redis"
	"intro-auction/internal/core/ports"
	"intro-auction/internal/service"
	"intro-auction/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds the wired services. Close releases everything New opened.
type App struct {
	LedgerSvc  *service.LedgerServiceImpl
	AuctionSvc *service.AuctionServiceImpl
	ReaperSvc  *service.ReaperServiceImpl
	TokenSvc   *service.JWTTokenService

	Redis          *goredis.Client              // nil when redis.host is empty
	RateLimitStore *redisStorage.RateLimitStore // nil without Redis
	ReaperLease    ports.ReaperLease            // nil without Redis
	HealthCheckers []ports.HealthChecker

	notifier *service.Notifier
	closers  []func()
}

type repositories struct {
	accounts   ports.AccountRepository
	settings   ports.IntroSettingsRepository
	convs      ports.ConversationRepository
	journal    ports.JournalRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
}

// New connects storage, Redis and the bridge, then builds the services.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{}
	if err := a.build(ctx, cfg, log); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	key, err := cfg.Signer.KeyBytes()
	if err != nil {
		return err
	}
	signer, err := service.NewBlake2bRecordSigner(key)
	if err != nil {
		return fmt.Errorf("record signer: %w", err)
	}

	repos, err := a.openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.HealthCheckers = append(a.HealthCheckers, repos.health)

	var idempCache ports.IdempotencyCache
	if cfg.Redis.Host != "" {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.Redis = rdb
		idempCache = redisStorage.NewIdempotencyCache(rdb)
		a.RateLimitStore = redisStorage.NewRateLimitStore(rdb)
		a.ReaperLease = redisStorage.NewReaperLease(rdb, "reaper")
		a.HealthCheckers = append(a.HealthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("redis disabled: no idempotency cache, rate limiting or reaper lease")
	}

	bridgeHTTP := &http.Client{Timeout: cfg.Bridge.Timeout}
	bridgeClient := bridge.NewClient(cfg.Bridge.URL, bridgeHTTP, log)
	if cfg.Bridge.URL != "" {
		a.HealthCheckers = append(a.HealthCheckers, bridge.NewHealthCheck(cfg.Bridge.URL, bridgeHTTP))
	}

	a.notifier = service.NewNotifier(service.NotifierConfig{
		URL:       cfg.Notify.WebhookURL,
		Secret:    cfg.Notify.Secret,
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	}, service.NewHMACSignatureService(), &http.Client{Timeout: cfg.Notify.Timeout}, logger.Component(log, "notifier"))
	a.notifier.Start(ctx)
	a.closers = append(a.closers, a.notifier.Close)

	inFee, err := cfg.Bridge.InboundFee()
	if err != nil {
		return err
	}
	outFee, err := cfg.Bridge.OutboundFee()
	if err != nil {
		return err
	}
	fee, err := cfg.Auction.Fee()
	if err != nil {
		return err
	}

	clock := service.SystemClock{}
	a.LedgerSvc = service.NewLedgerService(repos.accounts, repos.settings, repos.journal, bridgeClient, signer, clock, repos.transactor,
		service.LedgerConfig{
			InboundFee:  inFee,
			OutboundFee: outFee,
			DailyIntros: cfg.Auction.DefaultDailyIntros,
			Cycle:       cfg.Auction.Cycle,
		}, logger.Component(log, "ledger"))
	a.AuctionSvc = service.NewAuctionService(repos.convs, repos.settings, repos.accounts, repos.journal, idempCache, a.notifier,
		signer, clock, repos.transactor,
		service.AuctionPolicy{FeePercent: fee, BiddingEnabled: cfg.Auction.BiddingEnabled}, logger.Component(log, "auction"))
	a.ReaperSvc = service.NewReaperService(repos.convs, repos.settings, repos.accounts, repos.journal, a.notifier,
		signer, clock, repos.transactor,
		service.ReaperPolicy{Cycle: cfg.Auction.Cycle, Jitter: cfg.Auction.Jitter}, logger.Component(log, "reaper"))
	a.TokenSvc = service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	return nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("using in-memory storage; state is lost on exit")
		store := memory.New()
		return &repositories{
			accounts:   memory.NewAccountRepo(store),
			settings:   memory.NewIntroSettingsRepo(store),
			convs:      memory.NewConversationRepo(store),
			journal:    memory.NewJournalRepo(store),
			transactor: store,
			health:     store,
		}, nil
	case "postgres":
		if cfg.Storage.Migrate {
			if err := pgStorage.RunMigrations(cfg.Database.MigrateURL(), log); err != nil {
				return nil, err
			}
		}
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return &repositories{
			accounts:   pgStorage.NewAccountRepo(pool),
			settings:   pgStorage.NewIntroSettingsRepo(pool),
			convs:      pgStorage.NewConversationRepo(pool),
			journal:    pgStorage.NewJournalRepo(pool),
			transactor: pgStorage.NewTransactor(pool, cfg.Database.LockTimeout),
			health:     pgStorage.NewHealthCheck(pool),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close stops the notifier and closes connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Holder identifies this process to the reaper lease.
func Holder() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
