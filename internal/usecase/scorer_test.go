package usecase

import (
	"testing"

	"github.com/dealscope/backend/internal/domain"
)

func ratingPtr(f float64) *float64 { return &f }

func TestRank_PriceAscendingWithSingleLowest(t *testing.T) {
	s := NewScorer()

	group := domain.MatchGroup{
		GroupID:             "g1",
		RepresentativeTitle: "iPhone 15 Pro 128GB",
		Listings: []domain.Listing{
			makeListing("amazon", "1", "iPhone 15 Pro 128GB", 99999),
			makeListing("ebay", "2", "iPhone 15 Pro 128GB - Unlocked", 98999),
			makeListing("walmart", "3", "Apple iPhone 15 Pro 128GB", 104999),
		},
	}

	ranked := s.Rank([]domain.MatchGroup{group})
	if len(ranked) != 1 {
		t.Fatalf("len(ranked) = %d, want 1", len(ranked))
	}

	listings := ranked[0].Listings
	if len(listings) != 3 {
		t.Fatalf("group size = %d, want 3", len(listings))
	}

	wantPrices := []int64{98999, 99999, 104999}
	lowestCount := 0
	for i, l := range listings {
		if l.PriceMinorUnits != wantPrices[i] {
			t.Errorf("listings[%d].PriceMinorUnits = %d, want %d", i, l.PriceMinorUnits, wantPrices[i])
		}
		if l.Rank != i+1 {
			t.Errorf("listings[%d].Rank = %d, want %d", i, l.Rank, i+1)
		}
		if l.IsLowestPrice {
			lowestCount++
			if i != 0 {
				t.Errorf("listings[%d].IsLowestPrice = true, want only the first", i)
			}
		}
		if l.GroupID != "g1" {
			t.Errorf("listings[%d].GroupID = %s, want g1", i, l.GroupID)
		}
	}
	if lowestCount != 1 {
		t.Errorf("IsLowestPrice set on %d listings, want exactly 1", lowestCount)
	}
}

func TestRank_SavingsMetrics(t *testing.T) {
	s := NewScorer()

	group := domain.MatchGroup{
		GroupID: "g1",
		Listings: []domain.Listing{
			makeListing("amazon", "1", "Widget", 10000),
			makeListing("ebay", "2", "Widget", 12500),
		},
	}

	listings := s.Rank([]domain.MatchGroup{group})[0].Listings

	if listings[0].SavingsMinorUnits != 0 || listings[0].SavingsPercent != 0 {
		t.Errorf("lowest listing savings = %d (%.1f%%), want 0 (0%%)",
			listings[0].SavingsMinorUnits, listings[0].SavingsPercent)
	}
	if listings[1].SavingsMinorUnits != 2500 {
		t.Errorf("SavingsMinorUnits = %d, want 2500", listings[1].SavingsMinorUnits)
	}
	if listings[1].SavingsPercent != 25.0 {
		t.Errorf("SavingsPercent = %v, want 25.0", listings[1].SavingsPercent)
	}
}

func TestRank_ZeroLowestPriceAvoidsDivisionByZero(t *testing.T) {
	s := NewScorer()

	group := domain.MatchGroup{
		GroupID: "g1",
		Listings: []domain.Listing{
			makeListing("amazon", "1", "Freebie", 0),
			makeListing("ebay", "2", "Freebie", 500),
		},
	}

	listings := s.Rank([]domain.MatchGroup{group})[0].Listings

	if listings[1].SavingsMinorUnits != 500 {
		t.Errorf("SavingsMinorUnits = %d, want 500", listings[1].SavingsMinorUnits)
	}
	if listings[1].SavingsPercent != 0 {
		t.Errorf("SavingsPercent = %v, want 0 when lowest price is 0", listings[1].SavingsPercent)
	}
}

func TestCompositeScore_Monotonicity(t *testing.T) {
	t.Run("score rises as price falls", func(t *testing.T) {
		cheap := makeListing("amazon", "1", "Widget", 10000)
		pricey := makeListing("amazon", "2", "Widget", 50000)
		if compositeScore(cheap) <= compositeScore(pricey) {
			t.Errorf("score(cheap) = %v <= score(pricey) = %v", compositeScore(cheap), compositeScore(pricey))
		}
	})

	t.Run("score rises with rating", func(t *testing.T) {
		low := makeListing("amazon", "1", "Widget", 10000)
		low.Rating = ratingPtr(2.0)
		high := makeListing("amazon", "2", "Widget", 10000)
		high.Rating = ratingPtr(4.8)
		if compositeScore(high) <= compositeScore(low) {
			t.Errorf("score(high rating) = %v <= score(low rating) = %v", compositeScore(high), compositeScore(low))
		}
	})

	t.Run("score rises with reviews up to the cap", func(t *testing.T) {
		few := makeListing("amazon", "1", "Widget", 10000)
		few.ReviewCount = 10
		many := makeListing("amazon", "2", "Widget", 10000)
		many.ReviewCount = 800
		if compositeScore(many) <= compositeScore(few) {
			t.Errorf("score(many reviews) = %v <= score(few reviews) = %v", compositeScore(many), compositeScore(few))
		}
	})

	t.Run("review contribution is capped", func(t *testing.T) {
		capped := makeListing("amazon", "1", "Widget", 10000)
		capped.ReviewCount = 1000
		beyond := makeListing("amazon", "2", "Widget", 10000)
		beyond.ReviewCount = 1000000
		if compositeScore(beyond) != compositeScore(capped) {
			t.Errorf("score(1M reviews) = %v, want same as score(1k reviews) = %v",
				compositeScore(beyond), compositeScore(capped))
		}
	})
}

func TestBestDeal(t *testing.T) {
	s := NewScorer()

	t.Run("empty results yield no best deal", func(t *testing.T) {
		if id := s.BestDeal(nil); id != "" {
			t.Errorf("BestDeal(nil) = %q, want empty", id)
		}
	})

	t.Run("picks the highest-scoring lowest-price listing", func(t *testing.T) {
		cheapPopular := makeListing("amazon", "1", "Widget A", 10000)
		cheapPopular.Rating = ratingPtr(4.8)
		cheapPopular.ReviewCount = 2000

		cheapObscure := makeListing("ebay", "2", "Widget B", 10000)

		runnerUp := makeListing("walmart", "3", "Widget A", 15000)

		groups := []domain.MatchGroup{
			{GroupID: "g1", Listings: []domain.Listing{cheapPopular, runnerUp}},
			{GroupID: "g2", Listings: []domain.Listing{cheapObscure}},
		}

		ranked := s.Rank(groups)
		var flat []domain.RankedListing
		for _, g := range ranked {
			flat = append(flat, g.Listings...)
		}

		if id := s.BestDeal(flat); id != "amazon:1" {
			t.Errorf("BestDeal = %q, want amazon:1", id)
		}
	})

	t.Run("ignores non-lowest listings", func(t *testing.T) {
		lowest := makeListing("ebay", "1", "Widget", 20000)
		expensive := makeListing("amazon", "2", "Widget", 30000)
		expensive.Rating = ratingPtr(5.0)
		expensive.ReviewCount = 100000

		groups := []domain.MatchGroup{
			{GroupID: "g1", Listings: []domain.Listing{lowest, expensive}},
		}

		flat := s.Rank(groups)[0].Listings
		if id := s.BestDeal(flat); id != "ebay:1" {
			t.Errorf("BestDeal = %q, want ebay:1 (the lowest-price listing)", id)
		}
	})
}
