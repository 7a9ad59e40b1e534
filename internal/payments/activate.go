package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/sokoyetu/marketplace/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// activate flips the entitlement linked to a completed transaction to
// active and propagates the effect onto the owning user or ad. It runs
// inside the caller's database transaction so the entitlement status and
// the owner flag can never diverge.
func (l *Ledger) activate(tx *gorm.DB, txn *models.Transaction, now time.Time) error {
	switch {
	case txn.SubscriptionID != nil:
		return activateSubscription(tx, *txn.SubscriptionID, now)
	case txn.AdBoostID != nil:
		return activateBoost(tx, *txn.AdBoostID, now)
	default:
		return fmt.Errorf("payments: transaction %s has no linked entitlement", txn.TransactionReference)
	}
}

// activateSubscription activates the subscription and marks its user premium.
func activateSubscription(tx *gorm.DB, subscriptionID uint64, now time.Time) error {
	var subscription models.PremiumSubscription
	if errFind := tx.First(&subscription, subscriptionID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: subscription %d", ErrNotFound, subscriptionID)
		}
		return fmt.Errorf("payments: load subscription: %w", errFind)
	}

	end := now.AddDate(0, 0, subscription.DurationDays)
	updates := map[string]any{
		"status":     models.SubscriptionStatusActive,
		"start_date": now,
		"end_date":   end,
		"updated_at": now,
	}
	if errUpdate := tx.Model(&models.PremiumSubscription{}).
		Where("id = ?", subscription.ID).
		Updates(updates).Error; errUpdate != nil {
		return fmt.Errorf("payments: activate subscription: %w", errUpdate)
	}

	if errUser := tx.Model(&models.User{}).
		Where("id = ?", subscription.UserID).
		Updates(map[string]any{"is_premium": true, "updated_at": now}).Error; errUser != nil {
		return fmt.Errorf("payments: set user premium: %w", errUser)
	}

	log.WithField("subscription_id", subscription.ID).
		WithField("user_id", subscription.UserID).
		WithField("end_date", end).
		Info("subscription activated")
	return nil
}

// activateBoost activates the boost and stamps its tier onto the ad.
//
// When two boosts for the same ad complete concurrently, whichever
// activation commits last determines the visible premium tier. Accepted
// behavior, not worth a coordination mechanism.
func activateBoost(tx *gorm.DB, boostID uint64, now time.Time) error {
	var boost models.AdBoost
	if errFind := tx.First(&boost, boostID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: boost %d", ErrNotFound, boostID)
		}
		return fmt.Errorf("payments: load boost: %w", errFind)
	}

	end := now.AddDate(0, 0, boost.DurationDays)
	updates := map[string]any{
		"status":     models.BoostStatusActive,
		"start_date": now,
		"end_date":   end,
		"updated_at": now,
	}
	if errUpdate := tx.Model(&models.AdBoost{}).
		Where("id = ?", boost.ID).
		Updates(updates).Error; errUpdate != nil {
		return fmt.Errorf("payments: activate boost: %w", errUpdate)
	}

	if errAd := tx.Model(&models.Ad{}).
		Where("id = ?", boost.AdID).
		Updates(map[string]any{"premium_type": models.PremiumType(boost.BoostType), "updated_at": now}).Error; errAd != nil {
		return fmt.Errorf("payments: set ad premium tier: %w", errAd)
	}

	log.WithField("boost_id", boost.ID).
		WithField("ad_id", boost.AdID).
		WithField("boost_type", boost.BoostType).
		Info("ad boost activated")
	return nil
}
