package models

import "time"

// BoostType represents the purchased ad placement tier.
type BoostType string

// BoostType constants define ad boost tiers.
const (
	// BoostTypeVIP is the VIP placement boost.
	BoostTypeVIP BoostType = "vip"
	// BoostTypeTop is the top-of-list placement boost.
	BoostTypeTop BoostType = "top"
	// BoostTypeBoosted is the standard placement boost.
	BoostTypeBoosted BoostType = "boosted"
	// BoostTypeFeatured is the featured placement boost.
	BoostTypeFeatured BoostType = "featured"
)

// BoostStatus represents the lifecycle state of an ad boost.
type BoostStatus string

// BoostStatus constants define boost lifecycle states.
const (
	// BoostStatusPending marks a boost awaiting payment.
	BoostStatusPending BoostStatus = "pending"
	// BoostStatusActive marks a paid, running boost.
	BoostStatusActive BoostStatus = "active"
	// BoostStatusExpired marks a boost past its end date.
	BoostStatusExpired BoostStatus = "expired"
)

// AdBoost records a premium placement purchase for a single ad.
type AdBoost struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AdID uint64 `gorm:"not null;index:idx_boosts_ad_status"` // Boosted ad ID.
	Ad   Ad     `gorm:"foreignKey:AdID"`                     // Boosted ad record.

	BoostType BoostType   `gorm:"type:varchar(20);not null"`                                    // Purchased placement tier.
	Status    BoostStatus `gorm:"type:varchar(20);not null;default:pending;index:idx_boosts_ad_status"` // Lifecycle status.

	Amount   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Amount paid.
	Currency string  `gorm:"type:varchar(3);not null;default:KES"`  // Payment currency.

	DurationDays int `gorm:"not null;default:7"` // Entitlement duration from the purchase request.

	StartDate *time.Time `gorm:""`      // Set at activation.
	EndDate   *time.Time `gorm:"index"` // Set at activation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsActive reports whether the boost is running at the given time.
func (b *AdBoost) IsActive(now time.Time) bool {
	if b.Status != BoostStatusActive {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}
