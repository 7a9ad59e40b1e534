package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/ads"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/payments"
	log "github.com/sirupsen/logrus"
)

// respondPaymentsError maps payments sentinel errors onto HTTP codes.
// Permission failures render as 404 so resource existence does not leak.
func respondPaymentsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payments.ErrNotFound), errors.Is(err, payments.ErrPermission):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, payments.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid state"})
	case errors.Is(err, payments.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		log.WithError(err).Error("payments operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondAdsError maps ads sentinel errors onto HTTP codes.
func respondAdsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ads.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ads.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid state"})
	case errors.Is(err, ads.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		log.WithError(err).Error("ads operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// formatAd converts an ad into a response payload.
func formatAd(a *models.Ad) gin.H {
	out := gin.H{
		"id":            a.ID,
		"title":         a.Title,
		"slug":          a.Slug,
		"description":   a.Description,
		"price":         a.Price,
		"currency":      a.Currency,
		"condition":     a.Condition,
		"category_id":   a.CategoryID,
		"seller_id":     a.SellerID,
		"status":        a.Status,
		"premium_type":  a.PremiumType,
		"is_premium":    a.IsPremium(),
		"is_negotiable": a.IsNegotiable,
		"views_count":   a.ViewsCount,
		"created_at":    a.CreatedAt,
		"updated_at":    a.UpdatedAt,
	}
	if a.Category.ID != 0 {
		out["category"] = gin.H{"id": a.Category.ID, "name": a.Category.Name, "slug": a.Category.Slug}
	}
	if a.Location != nil {
		out["location"] = gin.H{"id": a.Location.ID, "city": a.Location.City, "county": a.Location.County}
	}
	if a.ExpiresAt != nil {
		out["expires_at"] = a.ExpiresAt
	}
	return out
}

// formatSubscription converts a subscription into a response payload.
func formatSubscription(s *models.PremiumSubscription) gin.H {
	return gin.H{
		"id":                s.ID,
		"subscription_type": s.SubscriptionType,
		"status":            s.Status,
		"amount":            s.Amount,
		"currency":          s.Currency,
		"duration_days":     s.DurationDays,
		"start_date":        s.StartDate,
		"end_date":          s.EndDate,
		"auto_renew":        s.AutoRenew,
		"created_at":        s.CreatedAt,
	}
}

// formatBoost converts an ad boost into a response payload.
func formatBoost(b *models.AdBoost) gin.H {
	return gin.H{
		"id":            b.ID,
		"ad_id":         b.AdID,
		"boost_type":    b.BoostType,
		"status":        b.Status,
		"amount":        b.Amount,
		"currency":      b.Currency,
		"duration_days": b.DurationDays,
		"start_date":    b.StartDate,
		"end_date":      b.EndDate,
		"created_at":    b.CreatedAt,
	}
}

// formatTransaction converts a transaction into a response payload.
func formatTransaction(t *models.Transaction) gin.H {
	return gin.H{
		"id":                    t.ID,
		"transaction_type":      t.TransactionType,
		"amount":                t.Amount,
		"currency":              t.Currency,
		"payment_method":        t.PaymentMethod,
		"status":                t.Status,
		"transaction_reference": t.TransactionReference,
		"subscription_id":       t.SubscriptionID,
		"ad_boost_id":           t.AdBoostID,
		"created_at":            t.CreatedAt,
	}
}

// paymentInstructions returns channel-specific payment guidance included
// in purchase responses.
func paymentInstructions(method models.PaymentMethod, reference string, amount float64) gin.H {
	switch method {
	case models.PaymentMethodMpesa:
		return gin.H{
			"method":    "mpesa",
			"steps":     "Go to M-Pesa, select Lipa na M-Pesa, enter the business number and the reference below, then the amount.",
			"reference": reference,
			"amount":    amount,
		}
	case models.PaymentMethodCard:
		return gin.H{
			"method":    "card",
			"steps":     "You will be redirected to the card payment page to complete this transaction.",
			"reference": reference,
			"amount":    amount,
		}
	default:
		return gin.H{
			"method":    string(method),
			"steps":     "Complete the payment with your provider using the reference below.",
			"reference": reference,
			"amount":    amount,
		}
	}
}
