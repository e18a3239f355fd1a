package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/dealscope/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Package-level compiled regex patterns for performance
var (
	priceAmountRegex  = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	currencyCodeRegex = regexp.MustCompile(`\b(USD|EUR|GBP|CAD|AUD|JPY)\b`)
)

// Rejection reasons recorded for observability
const (
	RejectReasonMissingTitle  = "missing_title"
	RejectReasonNoPrice       = "unparseable_price"
	RejectReasonNegativePrice = "negative_price"
)

// Rejection records a raw listing dropped during normalization. Rejected
// listings are excluded from all downstream stages but never fail a request.
type Rejection struct {
	SourceID   string
	ExternalID string
	Reason     string
}

// Normalizer converts adapter-specific raw listings into canonical Listings
type Normalizer struct {
	enableDebugLogging bool
}

// NewNormalizer creates a new normalizer
func NewNormalizer(enableDebugLogging bool) *Normalizer {
	return &Normalizer{enableDebugLogging: enableDebugLogging}
}

// Normalize validates and converts one raw listing. A nil Rejection means the
// listing is canonical and safe for matching and scoring.
func (n *Normalizer) Normalize(raw domain.RawListing, sourceID string) (domain.Listing, *Rejection) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return domain.Listing{}, n.reject(raw, sourceID, RejectReasonMissingTitle)
	}

	if strings.HasPrefix(strings.TrimSpace(raw.PriceText), "-") {
		return domain.Listing{}, n.reject(raw, sourceID, RejectReasonNegativePrice)
	}

	price, ok := parsePriceMinorUnits(raw.PriceText)
	if !ok {
		return domain.Listing{}, n.reject(raw, sourceID, RejectReasonNoPrice)
	}

	listing := domain.Listing{
		SourceID:           sourceID,
		ExternalID:         strings.TrimSpace(raw.ExternalID),
		Title:              title,
		PriceMinorUnits:    price,
		Currency:           resolveCurrency(raw),
		ImageURL:           raw.ImageURL,
		DetailURL:          raw.DetailURL,
		Rating:             clampRating(raw.Rating),
		ReviewCount:        max(raw.ReviewCount, 0),
		Availability:       coerceAvailability(raw.Availability),
		ShippingMinorUnits: parseShipping(raw.ShippingText),
	}

	return listing, nil
}

func (n *Normalizer) reject(raw domain.RawListing, sourceID, reason string) *Rejection {
	if n.enableDebugLogging {
		log.Printf("[NORM] rejected listing %q from %s: %s", raw.Title, sourceID, reason)
	}
	return &Rejection{SourceID: sourceID, ExternalID: raw.ExternalID, Reason: reason}
}

// parsePriceMinorUnits extracts the first numeric amount from free-form price
// text ("$1,049.99", "US $12.50", "999") and converts it to integer minor
// currency units. Returns false when no numeric amount is present.
func parsePriceMinorUnits(text string) (int64, bool) {
	match := priceAmountRegex.FindString(text)
	if match == "" {
		return 0, false
	}

	cleaned := strings.ReplaceAll(match, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}

	return amount.Shift(2).Round(0).IntPart(), true
}

// resolveCurrency prefers the explicit currency field and falls back to a
// currency code embedded in the price text, then to USD.
func resolveCurrency(raw domain.RawListing) string {
	if c := strings.ToUpper(strings.TrimSpace(raw.Currency)); c != "" {
		return c
	}
	if code := currencyCodeRegex.FindString(strings.ToUpper(raw.PriceText)); code != "" {
		return code
	}
	return "USD"
}

// clampRating clamps a rating into [0, 5]; absent stays absent
func clampRating(rating *float64) *float64 {
	if rating == nil {
		return nil
	}
	r := *rating
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	return &r
}

// coerceAvailability maps free-form availability strings onto the fixed enum.
// Unrecognized input becomes AvailabilityUnknown, never an error.
func coerceAvailability(s string) domain.Availability {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)

	switch {
	case normalized == "":
		return domain.AvailabilityUnknown
	case strings.Contains(normalized, "out of stock"),
		strings.Contains(normalized, "sold out"),
		strings.Contains(normalized, "unavailable"):
		return domain.AvailabilityOutOfStock
	case strings.Contains(normalized, "limited"),
		strings.Contains(normalized, "low stock"),
		strings.Contains(normalized, "left in stock"):
		return domain.AvailabilityLimited
	case strings.Contains(normalized, "in stock"),
		strings.Contains(normalized, "available"):
		return domain.AvailabilityInStock
	default:
		return domain.AvailabilityUnknown
	}
}

// parseShipping converts shipping text to minor units. "Free Shipping" is 0;
// text with no numeric amount means the cost is unknown (absent).
func parseShipping(text string) *int64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if strings.Contains(strings.ToLower(trimmed), "free") {
		zero := int64(0)
		return &zero
	}

	cost, ok := parsePriceMinorUnits(trimmed)
	if !ok {
		return nil
	}
	return &cost
}
