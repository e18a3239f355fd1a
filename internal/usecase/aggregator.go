package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dealscope/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// AggregatorConfig holds configuration for the aggregation coordinator
type AggregatorConfig struct {
	Deadline           time.Duration
	CacheTTL           time.Duration
	SourceCooldown     time.Duration
	Matching           MatcherConfig
	EnableDebugLogging bool
}

// Aggregator orchestrates one aggregation request end-to-end: cache lookup,
// concurrent adapter fan-out under a shared deadline, normalization, matching,
// scoring and cache fill. Adapters, normalizer, matcher and scorer are
// stateless per request; the cache and the per-source cooldown table are the
// only shared mutable state.
type Aggregator struct {
	registry   domain.AdapterRegistry
	cache      domain.ResultCache
	history    domain.HistorySource
	normalizer *Normalizer
	matcher    *Matcher
	scorer     *Scorer

	deadline time.Duration
	cacheTTL time.Duration
	cooldown time.Duration
	debug    bool

	mu            sync.Mutex
	cooldownUntil map[string]time.Time
}

// NewAggregator creates a new aggregation coordinator with dependencies
func NewAggregator(
	registry domain.AdapterRegistry,
	cache domain.ResultCache,
	history domain.HistorySource,
	config AggregatorConfig,
) *Aggregator {
	deadline := config.Deadline
	if deadline <= 0 {
		deadline = 3 * time.Second
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	cooldown := config.SourceCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &Aggregator{
		registry:      registry,
		cache:         cache,
		history:       history,
		normalizer:    NewNormalizer(config.EnableDebugLogging),
		matcher:       NewMatcher(config.Matching),
		scorer:        NewScorer(),
		deadline:      deadline,
		cacheTTL:      cacheTTL,
		cooldown:      cooldown,
		debug:         config.EnableDebugLogging,
		cooldownUntil: make(map[string]time.Time),
	}
}

// Search runs one aggregation. A subset of failing sources degrades the
// result; even all sources failing yields an empty successful result, since
// "no results found" is a normal user-facing state. The only error is an
// empty query, which callers are expected to reject before reaching here.
func (a *Aggregator) Search(ctx context.Context, query, category string) (*domain.SearchResult, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return nil, domain.ErrInvalidQuery
	}
	category = strings.TrimSpace(category)

	key := searchCacheKey(text, category)
	if cached, err := a.cache.Get(ctx, key); err == nil && cached != nil {
		hit := *cached
		hit.Source = "cache"
		return &hit, nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	adapters := a.registry.All()
	stats := domain.AggregateStats{SourcesTotal: len(adapters)}

	outcomes := make(chan domain.AdapterOutcome, len(adapters))
	launched := 0
	for _, adapter := range adapters {
		if a.inCooldown(adapter.ID()) {
			stats.SourcesSkipped++
			log.Printf("[AGG] skipping source %s: rate-limit cooldown active", adapter.ID())
			continue
		}
		launched++
		go func(adapter domain.SourceAdapter) {
			outcomes <- adapter.Fetch(ctx, text, category)
		}(adapter)
	}

	var listings []domain.Listing
	for i := 0; i < launched; i++ {
		outcome := <-outcomes
		switch outcome.Status {
		case domain.AdapterStatusOK:
			stats.SourcesOK++
			for _, raw := range outcome.RawListings {
				listing, rejection := a.normalizer.Normalize(raw, outcome.SourceID)
				if rejection != nil {
					stats.ListingsRejected++
					log.Printf("[AGG] dropped listing from %s: %s", rejection.SourceID, rejection.Reason)
					continue
				}
				listings = append(listings, listing)
			}
		case domain.AdapterStatusRateLimited:
			stats.SourcesFailed++
			a.markCooldown(outcome.SourceID)
			log.Printf("[AGG] source %s rate limited, cooling down for %s", outcome.SourceID, a.cooldown)
		default:
			stats.SourcesFailed++
			log.Printf("[AGG] source %s failed (%s): %s", outcome.SourceID, outcome.Status, outcome.ErrorDetail)
		}
	}

	groups := a.matcher.Match(listings)
	ranked := a.scorer.Rank(groups)
	flat := flattenGroups(ranked)

	stats.Groups = len(ranked)
	stats.DurationMs = time.Since(start).Milliseconds()

	result := &domain.SearchResult{
		Query:        text,
		Category:     category,
		Results:      flat,
		TotalResults: len(flat),
		Groups:       ranked,
		BestDealID:   a.scorer.BestDeal(flat),
		Stats:        stats,
		Source:       "live",
		CachedAt:     time.Now(),
	}

	if err := a.cache.Set(ctx, key, result, a.cacheTTL); err != nil {
		log.Printf("[AGG] failed to cache result for %q: %v", text, err)
	}

	return result, nil
}

// ProductDetails resolves a composite "source:externalId" id to a full detail
// record, merged with price history from the external history source. An
// unknown or malformed id is a not-found outcome, not a system fault.
func (a *Aggregator) ProductDetails(ctx context.Context, id string) (*domain.ProductDetail, error) {
	sourceID, externalID, ok := splitProductID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	adapter, ok := a.registry.Get(sourceID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	raw, err := adapter.Details(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	listing, rejection := a.normalizer.Normalize(raw.RawListing, sourceID)
	if rejection != nil {
		log.Printf("[AGG] detail record for %s unusable: %s", id, rejection.Reason)
		return nil, domain.ErrProductNotFound
	}

	detail := &domain.ProductDetail{
		Listing:        listing,
		Description:    raw.Description,
		Specifications: raw.Specifications,
		PriceHistory:   []domain.PricePoint{},
	}

	if a.history != nil {
		points, err := a.history.History(ctx, id)
		if err != nil {
			// History is best-effort; the detail record stands without it
			log.Printf("[AGG] price history unavailable for %s: %v", id, err)
		} else if points != nil {
			detail.PriceHistory = points
		}
	}

	return detail, nil
}

// PriceHistory reads the ordered price history for a product id from the
// external history source.
func (a *Aggregator) PriceHistory(ctx context.Context, id string) ([]domain.PricePoint, error) {
	if _, _, ok := splitProductID(id); !ok {
		return nil, domain.ErrProductNotFound
	}
	if a.history == nil {
		return nil, domain.ErrHistoryUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	points, err := a.history.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
	}
	if points == nil {
		points = []domain.PricePoint{}
	}
	return points, nil
}

// inCooldown reports whether a source is still backing off after rate limiting
func (a *Aggregator) inCooldown(sourceID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	until, ok := a.cooldownUntil[sourceID]
	return ok && time.Now().Before(until)
}

func (a *Aggregator) markCooldown(sourceID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cooldownUntil[sourceID] = time.Now().Add(a.cooldown)
}

// flattenGroups produces the group-ordered flat result sequence: groups in
// their stable creation order, listings within a group price-ascending.
func flattenGroups(groups []domain.RankedGroup) []domain.RankedListing {
	var flat []domain.RankedListing
	for _, g := range groups {
		flat = append(flat, g.Listings...)
	}
	if flat == nil {
		flat = []domain.RankedListing{}
	}
	return flat
}

// searchCacheKey builds the cache identity for a query.
// Format: "search:{normalized_query}:{category}"
func searchCacheKey(query, category string) string {
	return fmt.Sprintf("search:%s:%s", normalizeQueryText(query), strings.ToLower(category))
}

// normalizeQueryText normalizes a query for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeQueryText(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// splitProductID splits a composite "source:externalId" product id
func splitProductID(id string) (sourceID, externalID string, ok bool) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
