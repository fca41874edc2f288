// Package initializer wires configuration, storage, caching and services
// into a ready-to-serve dependency graph.
package initializer

import (
	"log/slog"
	"strings"

	"github.com/amirasaad/pos/config"
	"github.com/amirasaad/pos/infra"
	infracache "github.com/amirasaad/pos/infra/cache"
	infraeventbus "github.com/amirasaad/pos/infra/eventbus"
	"github.com/amirasaad/pos/infra/repository"
	"github.com/amirasaad/pos/pkg/cache"
	"github.com/amirasaad/pos/pkg/service/audit"
	offersvc "github.com/amirasaad/pos/pkg/service/offer"
	salesvc "github.com/amirasaad/pos/pkg/service/sale"
	"github.com/redis/go-redis/v9"
)

// Deps is the wired dependency graph the server runs on.
type Deps struct {
	Logger *slog.Logger
	Sale   *salesvc.Service
	Audit  *audit.Service
}

// InitializeDependencies loads every dependency in order: logger, database,
// migrations, repositories, offer cache, resolver, recorder and finally the
// sale service itself.
func InitializeDependencies(cfg *config.AppConfig) (*Deps, error) {
	logger := setupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		return nil, err
	}

	offerCache, err := newOfferCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	resolver := offersvc.NewService(
		repository.NewOfferRepository(db),
		offerCache,
		logger,
	)
	recorder := audit.NewService(repository.NewVersionRepository(db), logger)
	bus := infraeventbus.NewMemoryEventBus(logger)

	saleService := salesvc.NewService(salesvc.Deps{
		Uow:       repository.NewUoW(db),
		Stores:    repository.NewStoreRepository(db),
		Products:  repository.NewProductRepository(db),
		Customers: repository.NewCustomerRepository(db),
		Resolver:  resolver,
		Recorder:  recorder,
		Bus:       bus,
		Logger:    logger,
	})

	logger.Info("Dependencies initialized", "offer_cache", cfg.OfferCache.Backend)
	return &Deps{Logger: logger, Sale: saleService, Audit: recorder}, nil
}

func newOfferCache(cfg *config.AppConfig, logger *slog.Logger) (cache.OfferCache, error) {
	switch strings.ToLower(cfg.OfferCache.Backend) {
	case "redis":
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid redis URL", "error", err)
			return nil, err
		}
		return infracache.NewRedisOfferCacheWithOptions(opt, cfg.OfferCache.Prefix, logger), nil
	default:
		return infracache.NewMemoryOfferCache(), nil
	}
}
