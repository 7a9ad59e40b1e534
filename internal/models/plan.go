package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlanType represents the kind of entitlement a pricing plan sells.
type PlanType string

// PlanType constants define pricing plan kinds.
const (
	// PlanTypeSubscription sells a user premium subscription.
	PlanTypeSubscription PlanType = "subscription"
	// PlanTypeAdBoost sells a single-ad boost.
	PlanTypeAdBoost PlanType = "ad_boost"
)

// PricingPlan represents a catalog entry shown on the pricing page.
//
// Plans are display records maintained by administrators; the amount charged
// at purchase time comes from the pricing table, not from these rows.
type PricingPlan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string   `gorm:"type:varchar(100);not null"` // Plan name.
	PlanType    PlanType `gorm:"type:varchar(20);not null"`  // Entitlement kind sold.
	Description string   `gorm:"type:text"`                  // Plan description.

	Price    float64 `gorm:"type:decimal(10,2);not null;default:0"` // Price per duration unit.
	Currency string  `gorm:"type:varchar(3);not null;default:KES"`  // Price currency.

	DurationDays int `gorm:"not null;default:30"` // Entitlement duration in days.

	Features datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Ordered feature strings.

	IsActive  bool `gorm:"not null;default:true"` // Whether the plan is offered.
	SortOrder int  `gorm:"not null;default:0"`    // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
