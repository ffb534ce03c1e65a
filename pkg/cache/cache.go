// Package cache defines the exchange-rate cache contract.
package cache

import (
	"context"
	"time"
)

// Entry is a cached rate observation. Staleness is the caller's call:
// entries are kept past their TTL so they can serve as a last resort
// when live fetches fail.
type Entry struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how old the entry is relative to now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// RateCache stores rates keyed by ordered currency pair. Get returns
// (nil, nil) on a miss.
type RateCache interface {
	Get(ctx context.Context, from, to string) (*Entry, error)
	Set(ctx context.Context, from, to string, entry *Entry) error
}
