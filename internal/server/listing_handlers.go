package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selgo-dev/selgo-web/internal/catalog"
	"github.com/selgo-dev/selgo-web/internal/models"
)

// ListingsResponse is one page of listings
type ListingsResponse struct {
	Listings []models.Listing `json:"listings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// @Summary List listings
// @Param vertical query string false "Vertical slug"
// @Router /api/listings [get]
func (s *Server) listListings(c *gin.Context) {
	var q catalog.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if vertical := c.Query("vertical"); vertical != "" {
		if _, ok := catalog.Lookup(vertical); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown vertical"})
			return
		}
		q.Vertical = vertical
	}

	result, err := s.catalog.List(c.Request.Context(), q)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	listings := result.Listings
	if listings == nil {
		listings = []models.Listing{}
	}
	c.JSON(http.StatusOK, ListingsResponse{
		Listings: listings,
		Total:    result.Total,
		Page:     result.Page,
		PerPage:  result.PerPage,
	})
}

// @Summary Get listing
// @Router /api/listings/{id} [get]
func (s *Server) getListing(c *gin.Context) {
	listing, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, listing)
}
