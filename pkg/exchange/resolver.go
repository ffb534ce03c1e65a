// Package exchange resolves exchange rates for the transfer wizard,
// layering a TTL cache, provider routing, and graceful fallbacks.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/remitflow/remitflow/infra/metrics"
	"github.com/remitflow/remitflow/pkg/cache"
	"github.com/remitflow/remitflow/pkg/currency"
	"github.com/remitflow/remitflow/pkg/provider"
)

// Result is a resolved rate. Degraded marks a neutral 1.0 returned when
// every rate source failed; callers surface it as an indicator, never as
// a hard failure.
type Result struct {
	Rate     float64
	Source   string
	Degraded bool
}

// Config wires a Resolver.
type Config struct {
	Table    *currency.Table
	Cache    cache.RateCache
	Fiat     provider.FiatRates
	Tokens   provider.TokenRates
	Fallback map[string]float64 // static last-resort rates keyed "FROM-TO"
	TTL      time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time // injectable for tests; defaults to time.Now
}

// Resolver routes currency-pair lookups to the right provider, caches
// results, and degrades through static rates rather than failing.
type Resolver struct {
	table    *currency.Table
	cache    cache.RateCache
	fiat     provider.FiatRates
	tokens   provider.TokenRates
	fallback map[string]float64
	ttl      time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a Resolver from cfg.
func New(cfg Config) *Resolver {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{
		table:    cfg.Table,
		cache:    cfg.Cache,
		fiat:     cfg.Fiat,
		tokens:   cfg.Tokens,
		fallback: cfg.Fallback,
		ttl:      cfg.TTL,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
	}
}

func fallbackKey(from, to currency.Code) string {
	return fmt.Sprintf("%s-%s", from, to)
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}

// Resolve returns the rate for converting from into to. The only error
// it reports is context cancellation; every provider failure degrades
// through the static table, then any stale cache entry, then a neutral
// 1.0 flagged as degraded.
func (r *Resolver) Resolve(ctx context.Context, fromRaw, toRaw string) (Result, error) {
	from, to := currency.Normalize(fromRaw), currency.Normalize(toRaw)

	kind := r.table.Classify(from, to)
	if kind == currency.PairIdentity {
		return Result{Rate: 1.0, Source: "identity"}, nil
	}

	now := r.now()

	var stale *cache.Entry
	if entry, err := r.cache.Get(ctx, from.String(), to.String()); err != nil {
		r.logger.Error("rate cache lookup failed", "from", from, "to", to, "error", err)
	} else if entry != nil {
		if entry.Age(now) < r.ttl {
			r.metrics.CacheHit()
			return Result{Rate: entry.Rate, Source: "cache"}, nil
		}
		stale = entry
	}
	r.metrics.CacheMiss()

	quote, err := r.fetch(ctx, kind, from, to)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		r.logger.Warn("rate fetch failed, falling back",
			"from", from, "to", to, "error", err)
		return r.degrade(from, to, stale), nil
	}

	if err := r.cache.Set(ctx, from.String(), to.String(), &cache.Entry{
		Rate:      quote.Rate,
		Source:    quote.Source,
		FetchedAt: now,
	}); err != nil {
		r.logger.Error("rate cache write failed", "from", from, "to", to, "error", err)
	}

	return Result{Rate: quote.Rate, Source: quote.Source}, nil
}

func (r *Resolver) fetch(
	ctx context.Context,
	kind currency.PairKind,
	from, to currency.Code,
) (*provider.RateQuote, error) {
	var (
		quote *provider.RateQuote
		err   error
	)
	switch kind {
	case currency.PairFiat, currency.PairDirect:
		quote, err = r.fiat.GetRate(ctx, from.String(), to.String())
		if err != nil {
			r.metrics.ProviderFailure("fiat")
			return nil, err
		}
	case currency.PairToken:
		quote, err = r.tokens.GetRate(ctx, from.String(), to.String())
		if err != nil {
			r.metrics.ProviderFailure("token")
			return nil, err
		}
	case currency.PairTokenInverse:
		// The provider only supports the token as base; quote the
		// forward pair and invert.
		forward, err := r.tokens.GetRate(ctx, to.String(), from.String())
		if err != nil {
			r.metrics.ProviderFailure("token")
			return nil, err
		}
		if !validRate(forward.Rate) {
			return nil, fmt.Errorf("invalid forward rate %v for %s/%s", forward.Rate, to, from)
		}
		quote = &provider.RateQuote{
			From:      from.String(),
			To:        to.String(),
			Rate:      1 / forward.Rate,
			Source:    forward.Source + " (inverted)",
			Timestamp: forward.Timestamp,
		}
	default:
		return nil, fmt.Errorf("unroutable pair %s/%s", from, to)
	}

	if !validRate(quote.Rate) {
		return nil, fmt.Errorf("invalid rate %v from %s for %s/%s", quote.Rate, quote.Source, from, to)
	}
	return quote, nil
}

func (r *Resolver) degrade(from, to currency.Code, stale *cache.Entry) Result {
	if rate, ok := r.fallback[fallbackKey(from, to)]; ok {
		r.metrics.FallbackRate()
		r.logger.Info("using static fallback rate", "from", from, "to", to, "rate", rate)
		return Result{Rate: rate, Source: "fallback-static"}
	}
	if stale != nil && validRate(stale.Rate) {
		r.metrics.FallbackRate()
		r.logger.Info("using stale cached rate", "from", from, "to", to,
			"rate", stale.Rate, "fetched_at", stale.FetchedAt)
		return Result{Rate: stale.Rate, Source: "cache-stale"}
	}
	r.metrics.FallbackRate()
	r.logger.Warn("no fallback rate available, degrading to 1.0", "from", from, "to", to)
	return Result{Rate: 1.0, Source: "degraded", Degraded: true}
}
