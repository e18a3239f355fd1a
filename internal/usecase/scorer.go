package usecase

import (
	"math"
	"sort"

	"github.com/dealscope/backend/internal/domain"
)

// Score weights. These are a tunable policy: the only contract is that the
// composite score rises as price falls, rises with rating, and rises with
// review count up to a cap.
const (
	priceWeight       = 0.5
	ratingScoreMax    = 30.0
	reviewScoreCap    = 20.0
	reviewsPerPoint   = 50.0
	priceMajorPerUnit = 1000.0 // minor units per price-score point
)

// Scorer computes comparison metrics within each match group and the
// composite desirability score per listing.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Rank orders every group's listings by ascending price and attaches rank,
// lowest-price flag, savings and composite score. The ascending-price order
// is the invariant; the score never reorders listings within a group.
func (s *Scorer) Rank(groups []domain.MatchGroup) []domain.RankedGroup {
	ranked := make([]domain.RankedGroup, 0, len(groups))

	for _, group := range groups {
		listings := make([]domain.Listing, len(group.Listings))
		copy(listings, group.Listings)
		sort.SliceStable(listings, func(i, j int) bool {
			if listings[i].PriceMinorUnits != listings[j].PriceMinorUnits {
				return listings[i].PriceMinorUnits < listings[j].PriceMinorUnits
			}
			if listings[i].SourceID != listings[j].SourceID {
				return listings[i].SourceID < listings[j].SourceID
			}
			return listings[i].ExternalID < listings[j].ExternalID
		})

		lowest := listings[0].PriceMinorUnits
		members := make([]domain.RankedListing, 0, len(listings))
		for i, listing := range listings {
			savings := listing.PriceMinorUnits - lowest
			members = append(members, domain.RankedListing{
				Listing:           listing,
				GroupID:           group.GroupID,
				Rank:              i + 1,
				IsLowestPrice:     i == 0,
				SavingsMinorUnits: savings,
				SavingsPercent:    savingsPercent(savings, lowest),
				Score:             compositeScore(listing),
			})
		}

		ranked = append(ranked, domain.RankedGroup{
			GroupID:             group.GroupID,
			RepresentativeTitle: group.RepresentativeTitle,
			Listings:            members,
		})
	}

	return ranked
}

// BestDeal returns the id of the highest-scoring lowest-price listing across
// all groups, or empty when there are no results. Ties keep the first.
func (s *Scorer) BestDeal(results []domain.RankedListing) string {
	best := ""
	bestScore := -1.0
	for _, r := range results {
		if !r.IsLowestPrice {
			continue
		}
		if r.Score > bestScore {
			bestScore = r.Score
			best = r.ID()
		}
	}
	return best
}

// savingsPercent is 0 when the group's lowest price is 0 to avoid division by
// zero; otherwise savings relative to the lowest price, one decimal place.
func savingsPercent(savings, lowest int64) float64 {
	if lowest == 0 {
		return 0
	}
	return math.Round(float64(savings)/float64(lowest)*1000) / 10
}

// compositeScore blends price, rating and review volume into a 0-100-ish
// desirability number. Cheaper is better, higher rated is better, and review
// volume contributes with a hard cap so popularity cannot drown out price.
func compositeScore(listing domain.Listing) float64 {
	priceScore := 100 - float64(listing.PriceMinorUnits)/priceMajorPerUnit
	if priceScore < 0 {
		priceScore = 0
	}

	ratingScore := 0.0
	if listing.Rating != nil {
		ratingScore = *listing.Rating / 5 * ratingScoreMax
	}

	reviewScore := float64(listing.ReviewCount) / reviewsPerPoint
	if reviewScore > reviewScoreCap {
		reviewScore = reviewScoreCap
	}

	return math.Round(priceScore*priceWeight + ratingScore + reviewScore)
}
