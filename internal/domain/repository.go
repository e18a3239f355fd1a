package domain

import (
	"context"
	"time"
)

// SourceAdapter is the boundary to one retail platform. Fetch must respect
// the deadline carried by ctx: a source that cannot answer in time reports
// AdapterStatusTimeout instead of blocking past it. Adapters never mutate
// shared state.
type SourceAdapter interface {
	ID() string
	Fetch(ctx context.Context, query, category string) AdapterOutcome
	Details(ctx context.Context, externalID string) (*RawDetail, error)
}

// AdapterRegistry maps source identifiers to adapter instances.
type AdapterRegistry interface {
	Get(sourceID string) (SourceAdapter, bool)
	All() []SourceAdapter
}

// ResultCache memoizes aggregation results per (query, category) key.
// Get returns ErrCacheMiss for absent or expired entries; no reader ever
// observes a partially written entry.
type ResultCache interface {
	Get(ctx context.Context, key string) (*SearchResult, error)
	Set(ctx context.Context, key string, result *SearchResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// HistorySource is the external, read-only price-history data source.
type HistorySource interface {
	History(ctx context.Context, productID string) ([]PricePoint, error)
}
