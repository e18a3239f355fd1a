package domain

import "time"

// Availability is the canonical stock status of a listing.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityLimited    Availability = "limited"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityUnknown    Availability = "unknown"
)

// RawListing is the unvalidated shape a source adapter returns for one offer.
// Only the normalizer is allowed to interpret its fields.
type RawListing struct {
	ExternalID   string   `json:"externalId"`
	Title        string   `json:"title"`
	PriceText    string   `json:"priceText"`
	Currency     string   `json:"currency,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	DetailURL    string   `json:"detailUrl,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  int      `json:"reviewCount,omitempty"`
	Availability string   `json:"availability,omitempty"`
	ShippingText string   `json:"shippingText,omitempty"`
}

// Listing is a single product offer normalized to canonical fields.
// PriceMinorUnits is always present and non-negative; listings whose price
// cannot be parsed never reach this type.
type Listing struct {
	SourceID           string       `json:"sourceId"`
	ExternalID         string       `json:"externalId"`
	Title              string       `json:"title"`
	PriceMinorUnits    int64        `json:"priceMinorUnits"`
	Currency           string       `json:"currency"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	DetailURL          string       `json:"detailUrl,omitempty"`
	Rating             *float64     `json:"rating,omitempty"`
	ReviewCount        int          `json:"reviewCount"`
	Availability       Availability `json:"availability"`
	ShippingMinorUnits *int64       `json:"shippingCost,omitempty"`
}

// ID returns the composite identifier used for detail lookups.
func (l Listing) ID() string {
	return l.SourceID + ":" + l.ExternalID
}

// MatchGroup is a set of listings judged to represent the same physical
// product across sources. Groups partition the normalized listing set.
type MatchGroup struct {
	GroupID             string    `json:"groupId"`
	RepresentativeTitle string    `json:"representativeTitle"`
	Listings            []Listing `json:"listings"`
}

// RankedListing is a listing with its comparison metrics inside its group.
type RankedListing struct {
	Listing
	GroupID           string  `json:"groupId"`
	Rank              int     `json:"rank"`
	IsLowestPrice     bool    `json:"isLowestPrice"`
	SavingsMinorUnits int64   `json:"savings"`
	SavingsPercent    float64 `json:"savingsPercent"`
	Score             float64 `json:"score"`
}

// RankedGroup is a match group after scoring, listings price-ascending.
type RankedGroup struct {
	GroupID             string          `json:"groupId"`
	RepresentativeTitle string          `json:"representativeTitle"`
	Listings            []RankedListing `json:"listings"`
}

// AdapterStatus classifies the outcome of a single source fetch.
type AdapterStatus string

const (
	AdapterStatusOK          AdapterStatus = "ok"
	AdapterStatusTimeout     AdapterStatus = "timeout"
	AdapterStatusError       AdapterStatus = "error"
	AdapterStatusRateLimited AdapterStatus = "rate_limited"
)

// AdapterOutcome is the per-source result of one fetch; a failed source never
// affects another source's processing.
type AdapterOutcome struct {
	SourceID    string        `json:"sourceId"`
	Status      AdapterStatus `json:"status"`
	RawListings []RawListing  `json:"rawListings,omitempty"`
	ErrorDetail string        `json:"errorDetail,omitempty"`
}

// AggregateStats carries per-request observability counters.
type AggregateStats struct {
	SourcesTotal     int   `json:"sourcesTotal"`
	SourcesOK        int   `json:"sourcesOk"`
	SourcesFailed    int   `json:"sourcesFailed"`
	SourcesSkipped   int   `json:"sourcesSkipped"`
	ListingsRejected int   `json:"listingsRejected"`
	Groups           int   `json:"groups"`
	DurationMs       int64 `json:"durationMs"`
}

// SearchResult is the flattened, group-ordered output of one aggregation.
type SearchResult struct {
	Query        string          `json:"query"`
	Category     string          `json:"category,omitempty"`
	Results      []RankedListing `json:"results"`
	TotalResults int             `json:"totalResults"`
	Groups       []RankedGroup   `json:"groups"`
	BestDealID   string          `json:"bestDealId,omitempty"`
	Stats        AggregateStats  `json:"stats"`
	Source       string          `json:"source"` // "live" or "cache"
	CachedAt     time.Time       `json:"cachedAt,omitempty"`
}

// PricePoint is one observation from the external price-history source.
type PricePoint struct {
	Date            string `json:"date"`
	PriceMinorUnits int64  `json:"price"`
}

// RawDetail is the adapter-specific detail record for a single listing.
type RawDetail struct {
	RawListing
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// ProductDetail extends a normalized listing with descriptive fields and the
// ordered price history read from the external history source.
type ProductDetail struct {
	Listing
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	PriceHistory   []PricePoint      `json:"priceHistory"`
}
