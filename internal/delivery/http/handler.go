package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dealscope/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// PriceService is the application-layer contract the handlers depend on
type PriceService interface {
	Search(ctx context.Context, query, category string) (*domain.SearchResult, error)
	ProductDetails(ctx context.Context, id string) (*domain.ProductDetail, error)
	PriceHistory(ctx context.Context, id string) ([]domain.PricePoint, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	prices PriceService
}

// NewHandler creates a new HTTP handler
func NewHandler(prices PriceService) *Handler {
	return &Handler{prices: prices}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealscope-backend",
		"version": "1.0.0",
	})
}

// SearchPrices handles GET /api/v1/prices/search?q=...&category=...
func (h *Handler) SearchPrices(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")

	result, err := h.prices.Search(c.Request.Context(), query, category)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "query parameter 'q' is required",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "search failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"query":        result.Query,
		"results":      result.Results,
		"totalResults": result.TotalResults,
		"groups":       result.Groups,
		"bestDealId":   result.BestDealID,
		"stats":        result.Stats,
		"source":       result.Source,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ProductDetails handles GET /api/v1/prices/product/:id where id is the
// composite "sourceId:externalId" form returned by search
func (h *Handler) ProductDetails(c *gin.Context) {
	id := c.Param("id")

	detail, err := h.prices.ProductDetails(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "product not found",
			})
		case errors.Is(err, domain.ErrSourceUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error":   "source unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "failed to load product details",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": detail,
	})
}

// PriceHistory handles GET /api/v1/prices/history/:id
func (h *Handler) PriceHistory(c *gin.Context) {
	id := c.Param("id")

	points, err := h.prices.PriceHistory(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "product not found",
			})
		case errors.Is(err, domain.ErrHistoryUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "price history unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "failed to load price history",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"productId": id,
		"history":   points,
	})
}
