package models

import "time"

// AdStatus represents the lifecycle state of an ad.
type AdStatus string

// AdStatus constants define ad lifecycle states.
const (
	// AdStatusDraft marks an unpublished ad.
	AdStatusDraft AdStatus = "draft"
	// AdStatusActive marks a publicly listed ad.
	AdStatusActive AdStatus = "active"
	// AdStatusExpired marks an ad past its expiry date.
	AdStatusExpired AdStatus = "expired"
	// AdStatusSold marks an ad whose item was sold.
	AdStatusSold AdStatus = "sold"
	// AdStatusDeleted marks a soft-deleted ad.
	AdStatusDeleted AdStatus = "deleted"
)

// AdCondition represents the advertised item condition.
type AdCondition string

// AdCondition constants define item conditions.
const (
	// AdConditionNew marks a brand-new item.
	AdConditionNew AdCondition = "new"
	// AdConditionUsed marks a second-hand item.
	AdConditionUsed AdCondition = "used"
	// AdConditionRefurbished marks a refurbished item.
	AdConditionRefurbished AdCondition = "refurbished"
)

// PremiumType represents the visible premium tier of an ad.
type PremiumType string

// PremiumType constants define ad premium tiers.
const (
	// PremiumTypeBasic is the default non-premium tier.
	PremiumTypeBasic PremiumType = "basic"
	// PremiumTypeVIP is the VIP placement tier.
	PremiumTypeVIP PremiumType = "vip"
	// PremiumTypeTop is the top-of-list placement tier.
	PremiumTypeTop PremiumType = "top"
	// PremiumTypeBoosted is the boosted placement tier.
	PremiumTypeBoosted PremiumType = "boosted"
	// PremiumTypeFeatured is the featured placement tier.
	PremiumTypeFeatured PremiumType = "featured"
)

// Ad represents a classified advertisement.
type Ad struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title       string `gorm:"type:varchar(200);not null"`             // Ad title.
	Slug        string `gorm:"type:varchar(220);not null;uniqueIndex"` // Unique URL slug.
	Description string `gorm:"type:text;not null"`                     // Full description.

	Price    float64 `gorm:"type:decimal(12,2);not null;default:0"` // Asking price.
	Currency string  `gorm:"type:varchar(3);not null;default:KES"`  // Price currency.

	Condition AdCondition `gorm:"type:varchar(20);not null;default:used"` // Item condition.

	CategoryID uint64   `gorm:"not null;index"`        // Related category ID.
	Category   Category `gorm:"foreignKey:CategoryID"` // Related category record.

	LocationID *uint64   `gorm:"index"`                 // Optional location ID.
	Location   *Location `gorm:"foreignKey:LocationID"` // Optional location record.

	SellerID uint64 `gorm:"not null;index"`      // Owning user ID.
	Seller   User   `gorm:"foreignKey:SellerID"` // Owning user record.

	Status      AdStatus    `gorm:"type:varchar(20);not null;default:draft;index"`       // Lifecycle status.
	PremiumType PremiumType `gorm:"type:varchar(20);not null;default:basic;index"`       // Visible premium tier.

	IsNegotiable bool `gorm:"not null;default:true"` // Whether the price is negotiable.
	ViewsCount   int  `gorm:"not null;default:0"`    // Detail view counter.
	ContactCount int  `gorm:"not null;default:0"`    // Seller contact counter.

	ExpiresAt *time.Time `gorm:"index"` // Optional listing expiry.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}

// IsPremium reports whether the ad sorts in the premium group.
func (a *Ad) IsPremium() bool {
	return a.PremiumType != PremiumTypeBasic && a.PremiumType != ""
}

// IsExpired reports whether the ad is past its expiry date.
func (a *Ad) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}
