package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// CategoryHandler manages admin CRUD endpoints for categories.
type CategoryHandler struct {
	db *gorm.DB // Database handle for category records.
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// createCategoryRequest captures the payload for creating a category.
type createCategoryRequest struct {
	Name      string  `json:"name"`       // Display name.
	Slug      string  `json:"slug"`       // Unique URL slug.
	ParentID  *uint64 `json:"parent_id"`  // Optional parent category.
	SortOrder int     `json:"sort_order"` // Display order.
	IsActive  *bool   `json:"is_active"`  // Optional active flag.
}

// Create validates input and inserts a new category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var body createCategoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(body.Name)
	slug := strings.ToLower(strings.TrimSpace(body.Slug))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}
	if body.ParentID != nil {
		var count int64
		if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Category{}).
			Where("id = ?", *body.ParentID).
			Count(&count).Error; errCount != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
			return
		}
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	now := time.Now().UTC()
	category := models.Category{
		Name:      name,
		Slug:      slug,
		ParentID:  body.ParentID,
		IsActive:  isActive,
		SortOrder: body.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&category).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create category failed"})
		return
	}
	c.JSON(http.StatusCreated, h.formatCategory(&category))
}

// List returns all categories including inactive ones.
func (h *CategoryHandler) List(c *gin.Context) {
	var rows []models.Category
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list categories failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatCategory(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// Get fetches a category by ID.
func (h *CategoryHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var category models.Category
	if errFind := h.db.WithContext(c.Request.Context()).First(&category, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatCategory(&category))
}

// updateCategoryRequest captures optional fields for category updates.
type updateCategoryRequest struct {
	Name      *string `json:"name"`       // Optional name update.
	Slug      *string `json:"slug"`       // Optional slug update.
	ParentID  *uint64 `json:"parent_id"`  // Optional parent update.
	SortOrder *int    `json:"sort_order"` // Optional display order.
	IsActive  *bool   `json:"is_active"`  // Optional active flag.
}

// Update validates and applies category field updates.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateCategoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Category
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
	if body.Slug != nil {
		s := strings.ToLower(strings.TrimSpace(*body.Slug))
		if s == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
			return
		}
		updates["slug"] = s
	}
	if body.ParentID != nil {
		if *body.ParentID == id {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category cannot be its own parent"})
			return
		}
		updates["parent_id"] = *body.ParentID
	}
	if body.SortOrder != nil {
		updates["sort_order"] = *body.SortOrder
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a category by ID. Categories still referenced by ads
// are deactivated instead of removed.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var adCount int64
	if errCount := h.db.WithContext(c.Request.Context()).Model(&models.Ad{}).
		Where("category_id = ?", id).
		Count(&adCount).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if adCount > 0 {
		res := h.db.WithContext(c.Request.Context()).Model(&models.Category{}).Where("id = ?", id).
			Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deactivated": true})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Category{}, id)
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

// formatCategory converts a category model into a response payload.
func (h *CategoryHandler) formatCategory(cat *models.Category) gin.H {
	return gin.H{
		"id":         cat.ID,
		"name":       cat.Name,
		"slug":       cat.Slug,
		"parent_id":  cat.ParentID,
		"is_active":  cat.IsActive,
		"sort_order": cat.SortOrder,
		"created_at": cat.CreatedAt,
		"updated_at": cat.UpdatedAt,
	}
}
