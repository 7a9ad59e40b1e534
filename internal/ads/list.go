package ads

import (
	"context"
	"fmt"
	"time"

	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// Pagination bounds for public listings.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service answers catalog queries and manages ad lifecycle.
type Service struct {
	db *gorm.DB
}

// NewService constructs a Service.
func NewService(conn *gorm.DB) *Service {
	return &Service{db: conn}
}

// ListInput is the filter set for the public ad listing. All filters are
// optional and AND-composed; zero values mean "not filtered".
type ListInput struct {
	PriceMin      *float64
	PriceMax      *float64
	CategoryID    uint64
	CategorySlug  string
	City          string
	County        string
	Condition     models.AdCondition
	Premium       *bool // Premium group membership (premium_type != basic).
	PremiumType   models.PremiumType
	SellerID      uint64
	Search        string // Substring over title and description.
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Page          int
	PerPage       int
}

// List returns active ads matching the filters, premium group first and
// newest first within each group, plus the total match count.
func (s *Service) List(ctx context.Context, in ListInput) ([]models.Ad, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Ad{}).
		Where("ads.status = ?", models.AdStatusActive)

	if in.PriceMin != nil {
		q = q.Where("ads.price >= ?", *in.PriceMin)
	}
	if in.PriceMax != nil {
		q = q.Where("ads.price <= ?", *in.PriceMax)
	}
	if in.CategoryID != 0 {
		q = q.Where("ads.category_id = ?", in.CategoryID)
	}
	if in.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = ads.category_id").
			Where("categories.slug = ?", in.CategorySlug)
	}
	if in.City != "" || in.County != "" {
		q = q.Joins("JOIN locations ON locations.id = ads.location_id")
		if in.City != "" {
			q = q.Where(db.CaseInsensitiveEqExpr("locations.city"), in.City)
		}
		if in.County != "" {
			q = q.Where(db.CaseInsensitiveEqExpr("locations.county"), in.County)
		}
	}
	if in.Condition != "" {
		q = q.Where("ads.condition = ?", in.Condition)
	}
	if in.Premium != nil {
		if *in.Premium {
			q = q.Where("ads.premium_type <> ?", models.PremiumTypeBasic)
		} else {
			q = q.Where("ads.premium_type = ?", models.PremiumTypeBasic)
		}
	}
	if in.PremiumType != "" {
		q = q.Where("ads.premium_type = ?", in.PremiumType)
	}
	if in.SellerID != 0 {
		q = q.Where("ads.seller_id = ?", in.SellerID)
	}
	if in.Search != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+in.Search+"%")
		expr := fmt.Sprintf("(%s OR %s)",
			db.CaseInsensitiveLikeExpr(s.db, "ads.title"),
			db.CaseInsensitiveLikeExpr(s.db, "ads.description"))
		q = q.Where(expr, pattern, pattern)
	}
	if in.CreatedAfter != nil {
		q = q.Where("ads.created_at >= ?", *in.CreatedAfter)
	}
	if in.CreatedBefore != nil {
		q = q.Where("ads.created_at <= ?", *in.CreatedBefore)
	}

	var total int64
	if errCount := q.Session(&gorm.Session{}).Count(&total).Error; errCount != nil {
		return nil, 0, fmt.Errorf("ads: count listing: %w", errCount)
	}

	perPage := in.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := in.Page
	if page <= 0 {
		page = 1
	}

	var rows []models.Ad
	if errFind := q.Session(&gorm.Session{}).
		Order("CASE WHEN ads.premium_type = 'basic' THEN 1 ELSE 0 END").
		Order("ads.created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Preload("Category").
		Preload("Location").
		Find(&rows).Error; errFind != nil {
		return nil, 0, fmt.Errorf("ads: list: %w", errFind)
	}
	return rows, total, nil
}
