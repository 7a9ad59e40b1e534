package ads

import (
	"context"
	"errors"
	"fmt"

	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// Categories returns active categories ordered for display.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if errFind := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("ads: list categories: %w", errFind)
	}
	return rows, nil
}

// CategoryBySlug returns one active category.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if errFind := s.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("ads: load category: %w", errFind)
	}
	return &category, nil
}

// Locations returns all known locations ordered by city.
func (s *Service) Locations(ctx context.Context) ([]models.Location, error) {
	var rows []models.Location
	if errFind := s.db.WithContext(ctx).
		Order("city ASC, county ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("ads: list locations: %w", errFind)
	}
	return rows, nil
}
