// Package app assembles the transfer orchestration engine from its
// parts: providers, resolver, wizard, and poller.
package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/remitflow/remitflow/infra/backend"
	infracache "github.com/remitflow/remitflow/infra/cache"
	"github.com/remitflow/remitflow/infra/metrics"
	"github.com/remitflow/remitflow/infra/provider/fiatrates"
	"github.com/remitflow/remitflow/infra/provider/tokenrates"
	"github.com/remitflow/remitflow/pkg/cache"
	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/currency"
	"github.com/remitflow/remitflow/pkg/exchange"
	"github.com/remitflow/remitflow/pkg/poller"
	"github.com/remitflow/remitflow/pkg/provider"
	"github.com/remitflow/remitflow/pkg/wizard"
)

// App holds the engine's constructed services.
type App struct {
	Config   *config.App
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Sessions *wizard.Sessions
	Wizard   *wizard.Wizard
	Poller   *poller.Poller
	Resolver *exchange.Resolver
	Backend  *backend.Client

	redisCache *infracache.RedisRateCache
}

// New wires all services. messenger is the chat transport collaborator.
func New(cfg *config.App, messenger provider.Messenger, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  m,
		Sessions: wizard.NewSessions(),
	}

	var rateCache cache.RateCache
	if cfg.Redis.URL != "" {
		redisCache, err := infracache.NewRedisRateCache(cfg.Redis.URL, logger)
		if err != nil {
			return nil, err
		}
		a.redisCache = redisCache
		rateCache = redisCache
		logger.Info("using redis rate cache")
	} else {
		rateCache = infracache.NewMemoryRateCache()
	}

	table := currency.NewTable(
		currency.NewSet(cfg.Transfer.FiatCurrencies...),
		currency.NewSet(cfg.Transfer.TokenCurrencies...),
		cfg.Rates.InversePairs,
	)

	a.Resolver = exchange.New(exchange.Config{
		Table:    table,
		Cache:    rateCache,
		Fiat:     fiatrates.New(cfg.FiatRates, logger),
		Tokens:   tokenrates.New(cfg.TokenRates, logger),
		Fallback: cfg.Rates.Fallback,
		TTL:      cfg.Rates.CacheTTL,
		Logger:   logger,
		Metrics:  m,
	})

	a.Backend = backend.New(cfg.Backend, logger)

	a.Poller = poller.New(poller.Config{
		Backend:        a.Backend,
		Messenger:      messenger,
		Interval:       cfg.Polling.Interval,
		MaxDuration:    cfg.Polling.MaxDuration,
		MaxPolls:       cfg.Polling.MaxPolls,
		ErrorThreshold: cfg.Polling.ErrorThreshold,
		Logger:         logger,
		Metrics:        m,
	})

	a.Wizard = wizard.New(wizard.Config{
		Sessions:           a.Sessions,
		Resolver:           a.Resolver,
		Backend:            a.Backend,
		Tracker:            a.Poller,
		Table:              table,
		SettlementCurrency: cfg.Transfer.SettlementCurrency,
		FeeRate:            cfg.Transfer.FeePercentage,
		Logger:             logger,
		Metrics:            m,
	})

	return a, nil
}

// Shutdown sweeps the poller and releases shared resources.
func (a *App) Shutdown() {
	a.Poller.StopAll()
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.Logger.Error("failed to close redis cache", "error", err)
		}
	}
}
