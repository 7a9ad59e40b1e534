package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/ads"
	"github.com/sokoyetu/marketplace/internal/models"
)

// AdHandler serves the public ad catalog and seller ad management.
type AdHandler struct {
	service *ads.Service
}

// NewAdHandler constructs an AdHandler.
func NewAdHandler(service *ads.Service) *AdHandler {
	return &AdHandler{service: service}
}

// List returns active ads matching the query filters, premium first.
func (h *AdHandler) List(c *gin.Context) {
	in, errParse := parseListInput(c)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errParse.Error()})
		return
	}

	rows, total, errList := h.service.List(c.Request.Context(), in)
	if errList != nil {
		respondAdsError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatAd(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"ads": out, "total": total})
}

// Get returns one active ad by slug and counts the view.
func (h *AdHandler) Get(c *gin.Context) {
	ad, err := h.service.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondAdsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatAd(ad))
}

// createAdRequest captures the payload for posting an ad.
type createAdRequest struct {
	Title        string  `json:"title"`         // Ad title.
	Description  string  `json:"description"`   // Full description.
	Price        float64 `json:"price"`         // Asking price.
	Condition    string  `json:"condition"`     // Item condition.
	CategoryID   uint64  `json:"category_id"`   // Category ID.
	LocationID   *uint64 `json:"location_id"`   // Optional location ID.
	IsNegotiable *bool   `json:"is_negotiable"` // Optional, defaults true.
}

// Create posts a new ad owned by the caller.
func (h *AdHandler) Create(c *gin.Context) {
	var body createAdRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	negotiable := true
	if body.IsNegotiable != nil {
		negotiable = *body.IsNegotiable
	}
	condition := models.AdCondition(body.Condition)
	if body.Condition == "" {
		condition = models.AdConditionUsed
	}

	ad, errCreate := h.service.Create(c.Request.Context(), c.GetUint64("userID"), ads.CreateInput{
		Title:        body.Title,
		Description:  body.Description,
		Price:        body.Price,
		Condition:    condition,
		CategoryID:   body.CategoryID,
		LocationID:   body.LocationID,
		IsNegotiable: negotiable,
	})
	if errCreate != nil {
		respondAdsError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, formatAd(ad))
}

// updateAdRequest captures optional fields for ad updates.
type updateAdRequest struct {
	Title        *string  `json:"title"`         // Optional title update.
	Description  *string  `json:"description"`   // Optional description update.
	Price        *float64 `json:"price"`         // Optional price update.
	Condition    *string  `json:"condition"`     // Optional condition update.
	CategoryID   *uint64  `json:"category_id"`   // Optional category update.
	LocationID   *uint64  `json:"location_id"`   // Optional location update.
	IsNegotiable *bool    `json:"is_negotiable"` // Optional negotiable flag.
}

// Update applies partial changes to the caller's ad.
func (h *AdHandler) Update(c *gin.Context) {
	var body updateAdRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	in := ads.UpdateInput{
		Title:        body.Title,
		Description:  body.Description,
		Price:        body.Price,
		CategoryID:   body.CategoryID,
		LocationID:   body.LocationID,
		IsNegotiable: body.IsNegotiable,
	}
	if body.Condition != nil {
		condition := models.AdCondition(*body.Condition)
		in.Condition = &condition
	}

	ad, errUpdate := h.service.Update(c.Request.Context(), c.GetUint64("userID"), c.Param("slug"), in)
	if errUpdate != nil {
		respondAdsError(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, formatAd(ad))
}

// MarkSold marks the caller's ad as sold.
func (h *AdHandler) MarkSold(c *gin.Context) {
	ad, err := h.service.MarkSold(c.Request.Context(), c.GetUint64("userID"), c.Param("slug"))
	if err != nil {
		respondAdsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatAd(ad))
}

// parseListInput decodes listing filters from the query string.
func parseListInput(c *gin.Context) (ads.ListInput, error) {
	var in ads.ListInput

	if raw := strings.TrimSpace(c.Query("price_min")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, errInvalidFilter("price_min")
		}
		in.PriceMin = &v
	}
	if raw := strings.TrimSpace(c.Query("price_max")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, errInvalidFilter("price_max")
		}
		in.PriceMax = &v
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, errInvalidFilter("category_id")
		}
		in.CategoryID = v
	}
	if raw := strings.TrimSpace(c.Query("seller_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, errInvalidFilter("seller_id")
		}
		in.SellerID = v
	}
	if raw := strings.TrimSpace(c.Query("is_premium")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return in, errInvalidFilter("is_premium")
		}
		in.Premium = &v
	}
	if raw := strings.TrimSpace(c.Query("created_after")); raw != "" {
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, errInvalidFilter("created_after")
		}
		in.CreatedAfter = &v
	}
	if raw := strings.TrimSpace(c.Query("created_before")); raw != "" {
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, errInvalidFilter("created_before")
		}
		in.CreatedBefore = &v
	}
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return in, errInvalidFilter("page")
		}
		in.Page = v
	}
	if raw := strings.TrimSpace(c.Query("per_page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return in, errInvalidFilter("per_page")
		}
		in.PerPage = v
	}

	in.CategorySlug = strings.TrimSpace(c.Query("category"))
	in.City = strings.TrimSpace(c.Query("city"))
	in.County = strings.TrimSpace(c.Query("county"))
	in.Condition = models.AdCondition(strings.TrimSpace(c.Query("condition")))
	in.PremiumType = models.PremiumType(strings.TrimSpace(c.Query("premium_type")))
	in.Search = strings.TrimSpace(c.Query("search"))
	return in, nil
}

// filterError names a rejected query parameter.
type filterError string

func (e filterError) Error() string { return "invalid " + string(e) }

func errInvalidFilter(name string) error { return filterError(name) }
