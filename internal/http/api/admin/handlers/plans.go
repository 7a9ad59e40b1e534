package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanHandler manages admin CRUD endpoints for pricing plans.
type PlanHandler struct {
	db *gorm.DB // Database handle for plan records.
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// normalizePlanFeatures validates and normalizes the features JSON payload,
// a flat list of display strings.
func normalizePlanFeatures(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}
	var features []string
	if errUnmarshal := json.Unmarshal(raw, &features); errUnmarshal != nil {
		return nil, errors.New("invalid features")
	}
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		if f := strings.TrimSpace(feature); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	rawFeatures, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawFeatures), nil
}

// createPlanRequest captures the payload for creating a pricing plan.
type createPlanRequest struct {
	Name         string          `json:"name"`          // Plan name.
	PlanType     string          `json:"plan_type"`     // subscription or ad_boost.
	Description  string          `json:"description"`   // Plan description.
	Price        float64         `json:"price"`         // Price per duration.
	Currency     string          `json:"currency"`      // Optional, defaults KES.
	DurationDays int             `json:"duration_days"` // Entitlement duration.
	Features     json.RawMessage `json:"features"`      // Feature strings payload.
	SortOrder    int             `json:"sort_order"`    // Display order.
	IsActive     *bool           `json:"is_active"`     // Optional active flag.
}

// Create validates input and inserts a new pricing plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body createPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	planType := models.PlanType(strings.TrimSpace(body.PlanType))
	if planType != models.PlanTypeSubscription && planType != models.PlanTypeAdBoost {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan_type"})
		return
	}
	if body.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}
	if body.DurationDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_days must be positive"})
		return
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}
	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = "KES"
	}

	features, errFeatures := normalizePlanFeatures(body.Features)
	if errFeatures != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
		return
	}

	now := time.Now().UTC()
	plan := models.PricingPlan{
		Name:         strings.TrimSpace(body.Name),
		PlanType:     planType,
		Description:  body.Description,
		Price:        body.Price,
		Currency:     currency,
		DurationDays: body.DurationDays,
		Features:     features,
		IsActive:     isActive,
		SortOrder:    body.SortOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&plan).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plan failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatPlan(&plan))
}

// List returns all pricing plans, optionally filtered by active flag.
func (h *PlanHandler) List(c *gin.Context) {
	activeQ := strings.TrimSpace(c.Query("is_active"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.PricingPlan{})
	if activeQ != "" {
		if activeQ == "true" || activeQ == "1" {
			q = q.Where("is_active = ?", true)
		} else if activeQ == "false" || activeQ == "0" {
			q = q.Where("is_active = ?", false)
		}
	}

	var rows []models.PricingPlan
	if errFind := q.Order("sort_order ASC, created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatPlan(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a pricing plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var plan models.PricingPlan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatPlan(&plan))
}

// updatePlanRequest captures optional fields for plan updates.
type updatePlanRequest struct {
	Name         *string          `json:"name"`          // Optional name update.
	Description  *string          `json:"description"`   // Optional description.
	Price        *float64         `json:"price"`         // Optional price.
	Currency     *string          `json:"currency"`      // Optional currency.
	DurationDays *int             `json:"duration_days"` // Optional duration.
	Features     *json.RawMessage `json:"features"`      // Optional features payload.
	SortOrder    *int             `json:"sort_order"`    // Optional display order.
	IsActive     *bool            `json:"is_active"`     // Optional active flag.
}

// Update validates and applies pricing plan field updates.
func (h *PlanHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.PricingPlan
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Name != nil {
		n := strings.TrimSpace(*body.Name)
		if n == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = n
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Price != nil {
		if *body.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}
		updates["price"] = *body.Price
	}
	if body.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*body.Currency))
		if currency == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "currency cannot be empty"})
			return
		}
		updates["currency"] = currency
	}
	if body.DurationDays != nil {
		if *body.DurationDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration_days must be positive"})
			return
		}
		updates["duration_days"] = *body.DurationDays
	}
	if body.Features != nil {
		features, errFeatures := normalizePlanFeatures(*body.Features)
		if errFeatures != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
			return
		}
		updates["features"] = features
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.PricingPlan{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a pricing plan by ID.
func (h *PlanHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.PricingPlan{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enable marks a pricing plan as active.
func (h *PlanHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// Disable marks a pricing plan as inactive.
func (h *PlanHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// setActive toggles the active state for a pricing plan.
func (h *PlanHandler) setActive(c *gin.Context, active bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.PricingPlan{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": now})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// formatPlan converts a pricing plan model into a response payload.
func (h *PlanHandler) formatPlan(p *models.PricingPlan) gin.H {
	return gin.H{
		"id":            p.ID,
		"name":          p.Name,
		"plan_type":     p.PlanType,
		"description":   p.Description,
		"price":         p.Price,
		"currency":      p.Currency,
		"duration_days": p.DurationDays,
		"features":      p.Features,
		"is_active":     p.IsActive,
		"sort_order":    p.SortOrder,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
}
