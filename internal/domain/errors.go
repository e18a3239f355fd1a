package domain

import "errors"

var (
	// ErrInvalidQuery is returned when the search query is empty or malformed
	ErrInvalidQuery = errors.New("search query is empty or invalid")

	// ErrProductNotFound is returned when a detail lookup hits an unknown id
	ErrProductNotFound = errors.New("product not found")

	// ErrRateLimited is returned when a source is actively throttling us
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSourceUnavailable is returned when a source request fails
	ErrSourceUnavailable = errors.New("source request failed")

	// ErrCacheMiss is returned when a key is not found in the result cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrHistoryUnavailable is returned when the price-history source fails
	ErrHistoryUnavailable = errors.New("price history unavailable")
)
