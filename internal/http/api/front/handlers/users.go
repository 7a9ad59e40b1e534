package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Me returns the calling user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetUint64("userID")
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, formatUser(&user))
}
