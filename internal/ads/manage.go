package ads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sokoyetu/marketplace/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// slugRetries bounds insert retries on a slug collision.
const slugRetries = 3

// CreateInput is the validated input for posting an ad.
type CreateInput struct {
	Title        string
	Description  string
	Price        float64
	Condition    models.AdCondition
	CategoryID   uint64
	LocationID   *uint64
	IsNegotiable bool
	ExpiresAt    *time.Time
}

// UpdateInput carries the mutable ad fields. Nil pointers leave the
// stored value unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	Price        *float64
	Condition    *models.AdCondition
	CategoryID   *uint64
	LocationID   *uint64
	IsNegotiable *bool
}

// Create posts a new active ad for the seller. The slug is derived from
// the title with a random suffix; a collision regenerates it.
func (s *Service) Create(ctx context.Context, sellerID uint64, in CreateInput) (*models.Ad, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if !validCondition(in.Condition) {
		return nil, fmt.Errorf("%w: invalid condition", ErrValidation)
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		if err := s.checkLocation(ctx, *in.LocationID); err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < slugRetries; attempt++ {
		slug, errSlug := newSlug(in.Title)
		if errSlug != nil {
			return nil, errSlug
		}
		ad := models.Ad{
			Title:        strings.TrimSpace(in.Title),
			Slug:         slug,
			Description:  in.Description,
			Price:        in.Price,
			Currency:     "KES",
			Condition:    in.Condition,
			CategoryID:   in.CategoryID,
			LocationID:   in.LocationID,
			SellerID:     sellerID,
			Status:       models.AdStatusActive,
			PremiumType:  models.PremiumTypeBasic,
			IsNegotiable: in.IsNegotiable,
			ExpiresAt:    in.ExpiresAt,
		}
		errCreate := s.db.WithContext(ctx).Create(&ad).Error
		if errCreate == nil {
			log.WithField("ad_id", ad.ID).
				WithField("seller_id", sellerID).
				Info("ad created")
			return &ad, nil
		}
		if !errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("ads: create: %w", errCreate)
		}
		log.WithField("slug", slug).Warn("ad slug collision, regenerating")
	}
	return nil, fmt.Errorf("ads: slug collisions exhausted %d attempts", slugRetries)
}

// BySlug returns an active ad by slug and bumps its view counter.
func (s *Service) BySlug(ctx context.Context, slug string) (*models.Ad, error) {
	var ad models.Ad
	if errFind := s.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.AdStatusActive).
		Preload("Category").
		Preload("Location").
		First(&ad).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ad %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("ads: load ad: %w", errFind)
	}

	if errBump := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("id = ?", ad.ID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; errBump != nil {
		// A lost view count never blocks the detail page.
		log.WithError(errBump).WithField("ad_id", ad.ID).Warn("view counter update failed")
	} else {
		ad.ViewsCount++
	}
	return &ad, nil
}

// Update applies partial changes to an ad owned by the caller. Foreign
// and missing ads both report not found.
func (s *Service) Update(ctx context.Context, sellerID uint64, slug string, in UpdateInput) (*models.Ad, error) {
	ad, err := s.ownAd(ctx, sellerID, slug)
	if err != nil {
		return nil, err
	}
	if ad.Status == models.AdStatusSold || ad.Status == models.AdStatusDeleted {
		return nil, fmt.Errorf("%w: ad is %s", ErrInvalidState, ad.Status)
	}

	updates := map[string]any{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", ErrValidation)
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("%w: description is required", ErrValidation)
		}
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		updates["price"] = *in.Price
	}
	if in.Condition != nil {
		if !validCondition(*in.Condition) {
			return nil, fmt.Errorf("%w: invalid condition", ErrValidation)
		}
		updates["condition"] = *in.Condition
	}
	if in.CategoryID != nil {
		if errCheck := s.checkCategory(ctx, *in.CategoryID); errCheck != nil {
			return nil, errCheck
		}
		updates["category_id"] = *in.CategoryID
	}
	if in.LocationID != nil {
		if errCheck := s.checkLocation(ctx, *in.LocationID); errCheck != nil {
			return nil, errCheck
		}
		updates["location_id"] = *in.LocationID
	}
	if in.IsNegotiable != nil {
		updates["is_negotiable"] = *in.IsNegotiable
	}
	if len(updates) == 0 {
		return ad, nil
	}
	updates["updated_at"] = time.Now().UTC()

	if errUpdate := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("id = ?", ad.ID).
		Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("ads: update: %w", errUpdate)
	}

	var updated models.Ad
	if errFind := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Location").
		First(&updated, ad.ID).Error; errFind != nil {
		return nil, fmt.Errorf("ads: reload ad: %w", errFind)
	}
	return &updated, nil
}

// MarkSold marks the caller's ad as sold. Selling twice is rejected.
func (s *Service) MarkSold(ctx context.Context, sellerID uint64, slug string) (*models.Ad, error) {
	ad, err := s.ownAd(ctx, sellerID, slug)
	if err != nil {
		return nil, err
	}
	if ad.Status == models.AdStatusSold {
		return nil, fmt.Errorf("%w: ad already sold", ErrInvalidState)
	}
	if ad.Status != models.AdStatusActive {
		return nil, fmt.Errorf("%w: ad is %s", ErrInvalidState, ad.Status)
	}

	now := time.Now().UTC()
	if errUpdate := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("id = ?", ad.ID).
		Updates(map[string]any{"status": models.AdStatusSold, "updated_at": now}).Error; errUpdate != nil {
		return nil, fmt.Errorf("ads: mark sold: %w", errUpdate)
	}
	ad.Status = models.AdStatusSold
	ad.UpdatedAt = now
	log.WithField("ad_id", ad.ID).Info("ad marked sold")
	return ad, nil
}

// ownAd loads an ad by slug owned by the seller, not-found for foreign ads.
func (s *Service) ownAd(ctx context.Context, sellerID uint64, slug string) (*models.Ad, error) {
	var ad models.Ad
	if errFind := s.db.WithContext(ctx).
		Where("slug = ? AND seller_id = ?", slug, sellerID).
		First(&ad).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ad %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("ads: load ad: %w", errFind)
	}
	return &ad, nil
}

func (s *Service) checkCategory(ctx context.Context, id uint64) error {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error; errCount != nil {
		return fmt.Errorf("ads: check category: %w", errCount)
	}
	if count == 0 {
		return fmt.Errorf("%w: category %d", ErrValidation, id)
	}
	return nil
}

func (s *Service) checkLocation(ctx context.Context, id uint64) error {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Location{}).
		Where("id = ?", id).
		Count(&count).Error; errCount != nil {
		return fmt.Errorf("ads: check location: %w", errCount)
	}
	if count == 0 {
		return fmt.Errorf("%w: location %d", ErrValidation, id)
	}
	return nil
}

func validCondition(c models.AdCondition) bool {
	switch c {
	case models.AdConditionNew, models.AdConditionUsed, models.AdConditionRefurbished:
		return true
	}
	return false
}
