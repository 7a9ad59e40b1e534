package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/notify"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CancelSubscription cancels one of the caller's active subscriptions and
// clears the user's premium flag when no other active subscription remains.
//
// The status flip and the premium-flag check run in one database
// transaction with the user's subscription rows locked, so two concurrent
// cancellations serialize. A purchase activating concurrently can still
// re-grant premium right after; that is the documented business-level race.
func (l *Ledger) CancelSubscription(ctx context.Context, userID, subscriptionID uint64) (*models.PremiumSubscription, error) {
	var result models.PremiumSubscription
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("user_id = ?", userID)
		if !db.IsSQLite(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var subscriptions []models.PremiumSubscription
		if errFind := q.Find(&subscriptions).Error; errFind != nil {
			return fmt.Errorf("payments: load subscriptions: %w", errFind)
		}

		var target *models.PremiumSubscription
		for i := range subscriptions {
			if subscriptions[i].ID == subscriptionID {
				target = &subscriptions[i]
				break
			}
		}
		if target == nil {
			// Also covers subscriptions owned by someone else: report not
			// found rather than leaking existence.
			if errOther := tx.First(&models.PremiumSubscription{}, subscriptionID).Error; errOther == nil {
				return fmt.Errorf("%w: subscription %d", ErrPermission, subscriptionID)
			} else if !errors.Is(errOther, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payments: load subscription: %w", errOther)
			}
			return fmt.Errorf("%w: subscription %d", ErrNotFound, subscriptionID)
		}
		if target.Status != models.SubscriptionStatusActive {
			return fmt.Errorf("%w: subscription is %s", ErrInvalidState, target.Status)
		}

		now := time.Now().UTC()
		if errUpdate := tx.Model(&models.PremiumSubscription{}).
			Where("id = ?", target.ID).
			Updates(map[string]any{
				"status":     models.SubscriptionStatusCancelled,
				"auto_renew": false,
				"updated_at": now,
			}).Error; errUpdate != nil {
			return fmt.Errorf("payments: cancel subscription: %w", errUpdate)
		}

		otherActive := false
		for i := range subscriptions {
			if subscriptions[i].ID != target.ID && subscriptions[i].Status == models.SubscriptionStatusActive {
				otherActive = true
				break
			}
		}
		if !otherActive {
			if errUser := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Updates(map[string]any{"is_premium": false, "updated_at": now}).Error; errUser != nil {
				return fmt.Errorf("payments: clear user premium: %w", errUser)
			}
		}

		target.Status = models.SubscriptionStatusCancelled
		target.AutoRenew = false
		target.UpdatedAt = now
		result = *target
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	l.events.Publish(ctx, notify.EventSubscriptionCancelled, map[string]any{
		"subscription_id": result.ID,
		"user_id":         result.UserID,
	})
	log.WithField("subscription_id", result.ID).
		WithField("user_id", result.UserID).
		Info("subscription cancelled")
	return &result, nil
}

// Subscriptions returns the caller's subscriptions, newest first.
func (l *Ledger) Subscriptions(ctx context.Context, userID uint64) ([]models.PremiumSubscription, error) {
	var rows []models.PremiumSubscription
	if errFind := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("payments: list subscriptions: %w", errFind)
	}
	return rows, nil
}

// ActiveSubscription returns the caller's active subscription with the
// latest end date, or ErrNotFound when none is active.
func (l *Ledger) ActiveSubscription(ctx context.Context, userID uint64) (*models.PremiumSubscription, error) {
	var subscription models.PremiumSubscription
	if errFind := l.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("end_date DESC").
		First(&subscription).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active subscription", ErrNotFound)
		}
		return nil, fmt.Errorf("payments: load active subscription: %w", errFind)
	}
	return &subscription, nil
}

// Boosts returns boosts for ads owned by the caller, newest first.
func (l *Ledger) Boosts(ctx context.Context, userID uint64) ([]models.AdBoost, error) {
	var rows []models.AdBoost
	if errFind := l.db.WithContext(ctx).
		Joins("JOIN ads ON ads.id = ad_boosts.ad_id").
		Where("ads.seller_id = ?", userID).
		Order("ad_boosts.created_at DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("payments: list boosts: %w", errFind)
	}
	return rows, nil
}
