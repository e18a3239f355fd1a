package adapter

import "github.com/dealscope/backend/internal/domain"

// apiListing is the wire shape every gateway returns for one offer. Prices
// ship as display text; parsing them is the normalizer's job, not the
// adapter's.
type apiListing struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Currency     string   `json:"currency"`
	ImageURL     string   `json:"image_url"`
	URL          string   `json:"url"`
	Rating       *float64 `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	Availability string   `json:"availability"`
	Shipping     string   `json:"shipping"`
}

type searchResponse struct {
	Listings []apiListing `json:"listings"`
	Total    int          `json:"total"`
}

type detailResponse struct {
	Listing        apiListing        `json:"listing"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
}

func mapToRawListing(item apiListing) domain.RawListing {
	return domain.RawListing{
		ExternalID:   item.ID,
		Title:        item.Title,
		PriceText:    item.Price,
		Currency:     item.Currency,
		ImageURL:     item.ImageURL,
		DetailURL:    item.URL,
		Rating:       item.Rating,
		ReviewCount:  item.ReviewCount,
		Availability: item.Availability,
		ShippingText: item.Shipping,
	}
}

func mapToRawListings(items []apiListing) []domain.RawListing {
	if len(items) == 0 {
		return nil
	}
	raws := make([]domain.RawListing, 0, len(items))
	for _, item := range items {
		raws = append(raws, mapToRawListing(item))
	}
	return raws
}

func mapToRawDetail(resp detailResponse) *domain.RawDetail {
	return &domain.RawDetail{
		RawListing:     mapToRawListing(resp.Listing),
		Description:    resp.Description,
		Specifications: resp.Specifications,
	}
}
