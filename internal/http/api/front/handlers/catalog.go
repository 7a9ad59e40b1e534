package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/ads"
)

// CatalogHandler serves public category and location lookups.
type CatalogHandler struct {
	service *ads.Service
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service *ads.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Categories returns active categories in display order.
func (h *CatalogHandler) Categories(c *gin.Context) {
	rows, err := h.service.Categories(c.Request.Context())
	if err != nil {
		respondAdsError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"name":       row.Name,
			"slug":       row.Slug,
			"parent_id":  row.ParentID,
			"sort_order": row.SortOrder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// Category returns one active category by slug.
func (h *CatalogHandler) Category(c *gin.Context) {
	category, err := h.service.CategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondAdsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         category.ID,
		"name":       category.Name,
		"slug":       category.Slug,
		"parent_id":  category.ParentID,
		"sort_order": category.SortOrder,
	})
}

// Locations returns all known locations.
func (h *CatalogHandler) Locations(c *gin.Context) {
	rows, err := h.service.Locations(c.Request.Context())
	if err != nil {
		respondAdsError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{"id": row.ID, "city": row.City, "county": row.County})
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}
