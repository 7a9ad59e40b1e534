package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// PlanFrontHandler serves the public pricing page.
type PlanFrontHandler struct {
	db *gorm.DB
}

// NewPlanFrontHandler constructs a PlanFrontHandler.
func NewPlanFrontHandler(db *gorm.DB) *PlanFrontHandler {
	return &PlanFrontHandler{db: db}
}

// List returns active pricing plans, optionally filtered by plan_type.
func (h *PlanFrontHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.PricingPlan{}).
		Where("is_active = ?", true)

	planType := strings.TrimSpace(c.Query("plan_type"))
	if planType != "" {
		if planType != string(models.PlanTypeSubscription) && planType != string(models.PlanTypeAdBoost) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan_type"})
			return
		}
		q = q.Where("plan_type = ?", planType)
	}

	var rows []models.PricingPlan
	if errFind := q.Order("sort_order ASC, price ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, plan := range rows {
		out = append(out, gin.H{
			"id":            plan.ID,
			"name":          plan.Name,
			"plan_type":     plan.PlanType,
			"description":   plan.Description,
			"price":         plan.Price,
			"currency":      plan.Currency,
			"duration_days": plan.DurationDays,
			"features":      plan.Features,
			"sort_order":    plan.SortOrder,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}
