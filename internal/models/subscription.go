package models

import "time"

// SubscriptionType represents the purchased subscription tier.
type SubscriptionType string

// SubscriptionType constants define subscription tiers.
const (
	// SubscriptionTypeBasic is the free tier.
	SubscriptionTypeBasic SubscriptionType = "basic"
	// SubscriptionTypePremium is the standard paid tier.
	SubscriptionTypePremium SubscriptionType = "premium"
	// SubscriptionTypePro is the professional tier.
	SubscriptionTypePro SubscriptionType = "pro"
	// SubscriptionTypeEnterprise is the enterprise tier.
	SubscriptionTypeEnterprise SubscriptionType = "enterprise"
)

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

// SubscriptionStatus constants define subscription lifecycle states.
const (
	// SubscriptionStatusPending marks a subscription awaiting payment.
	SubscriptionStatusPending SubscriptionStatus = "pending"
	// SubscriptionStatusActive marks a paid, running subscription.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusExpired marks a subscription past its end date.
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	// SubscriptionStatusCancelled marks a user-cancelled subscription.
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// PremiumSubscription records a user's premium entitlement purchase.
type PremiumSubscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index:idx_subscriptions_user_status"` // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"`                            // Owning user record.

	SubscriptionType SubscriptionType   `gorm:"type:varchar(20);not null;default:premium"`                        // Purchased tier.
	Status           SubscriptionStatus `gorm:"type:varchar(20);not null;default:pending;index:idx_subscriptions_user_status"` // Lifecycle status.

	Amount   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Amount paid.
	Currency string  `gorm:"type:varchar(3);not null;default:KES"`  // Payment currency.

	DurationDays int `gorm:"not null;default:30"` // Entitlement duration from the purchase request.

	StartDate *time.Time `gorm:""`      // Set at activation.
	EndDate   *time.Time `gorm:"index"` // Set at activation.

	AutoRenew bool `gorm:"not null;default:false"` // Renewal opt-in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsActive reports whether the subscription grants premium at the given time.
//
// Derived, never stored: crossing the end date flips this without a write.
func (s *PremiumSubscription) IsActive(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return false
	}
	return true
}
