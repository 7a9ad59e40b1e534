package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/payments"
)

// PaymentHandler serves subscription, boost, and transaction endpoints.
type PaymentHandler struct {
	ledger *payments.Ledger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(ledger *payments.Ledger) *PaymentHandler {
	return &PaymentHandler{ledger: ledger}
}

// Subscriptions lists the caller's subscriptions.
func (h *PaymentHandler) Subscriptions(c *gin.Context) {
	rows, err := h.ledger.Subscriptions(c.Request.Context(), c.GetUint64("userID"))
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatSubscription(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// ActiveSubscription returns the caller's current active subscription.
func (h *PaymentHandler) ActiveSubscription(c *gin.Context) {
	subscription, err := h.ledger.ActiveSubscription(c.Request.Context(), c.GetUint64("userID"))
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatSubscription(subscription))
}

// purchaseSubscriptionRequest captures the subscription purchase payload.
type purchaseSubscriptionRequest struct {
	SubscriptionType string `json:"subscription_type"` // Tier to purchase.
	DurationDays     int    `json:"duration_days"`     // Optional, defaults to 30.
	PaymentMethod    string `json:"payment_method"`    // Payment channel.
	AutoRenew        bool   `json:"auto_renew"`        // Renewal opt-in.
}

// PurchaseSubscription starts a subscription purchase and returns the
// pending records with payment instructions.
func (h *PaymentHandler) PurchaseSubscription(c *gin.Context) {
	var body purchaseSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	subscription, txn, err := h.ledger.PurchaseSubscription(c.Request.Context(), c.GetUint64("userID"), payments.SubscriptionPurchase{
		SubscriptionType: models.SubscriptionType(body.SubscriptionType),
		DurationDays:     body.DurationDays,
		PaymentMethod:    models.PaymentMethod(body.PaymentMethod),
		AutoRenew:        body.AutoRenew,
	})
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"subscription":         formatSubscription(subscription),
		"transaction":          formatTransaction(txn),
		"payment_instructions": paymentInstructions(txn.PaymentMethod, txn.TransactionReference, txn.Amount),
	})
}

// CancelSubscription cancels one of the caller's active subscriptions.
func (h *PaymentHandler) CancelSubscription(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	subscription, err := h.ledger.CancelSubscription(c.Request.Context(), c.GetUint64("userID"), id)
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatSubscription(subscription))
}

// Boosts lists boosts for ads the caller owns.
func (h *PaymentHandler) Boosts(c *gin.Context) {
	rows, err := h.ledger.Boosts(c.Request.Context(), c.GetUint64("userID"))
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatBoost(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"boosts": out})
}

// purchaseBoostRequest captures the ad boost purchase payload.
type purchaseBoostRequest struct {
	AdID          uint64 `json:"ad_id"`          // Ad to boost, must be the caller's.
	BoostType     string `json:"boost_type"`     // Placement tier to purchase.
	DurationDays  int    `json:"duration_days"`  // Optional, defaults to 7.
	PaymentMethod string `json:"payment_method"` // Payment channel.
}

// PurchaseBoost starts an ad boost purchase and returns the pending
// records with payment instructions.
func (h *PaymentHandler) PurchaseBoost(c *gin.Context) {
	var body purchaseBoostRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	boost, txn, err := h.ledger.PurchaseBoost(c.Request.Context(), c.GetUint64("userID"), payments.BoostPurchase{
		AdID:          body.AdID,
		BoostType:     models.BoostType(body.BoostType),
		DurationDays:  body.DurationDays,
		PaymentMethod: models.PaymentMethod(body.PaymentMethod),
	})
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"boost":                formatBoost(boost),
		"transaction":          formatTransaction(txn),
		"payment_instructions": paymentInstructions(txn.PaymentMethod, txn.TransactionReference, txn.Amount),
	})
}

// Transactions lists the caller's transactions.
func (h *PaymentHandler) Transactions(c *gin.Context) {
	rows, err := h.ledger.Transactions(c.Request.Context(), c.GetUint64("userID"))
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatTransaction(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

// Transaction returns one of the caller's transactions by id.
func (h *PaymentHandler) Transaction(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	txn, err := h.ledger.Transaction(c.Request.Context(), c.GetUint64("userID"), id)
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatTransaction(txn))
}

// callbackRequest captures the payment gateway callback payload.
type callbackRequest struct {
	TransactionReference string         `json:"transaction_reference"` // Ledger reference.
	Status               string         `json:"status"`                // completed or failed.
	ProviderReference    string         `json:"provider_reference"`    // Gateway receipt id.
	Metadata             map[string]any `json:"metadata"`              // Extra gateway fields.
}

// Callback applies a payment gateway result to the referenced transaction.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var body callbackRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	txn, err := h.ledger.ApplyCallback(c.Request.Context(), payments.CallbackInput{
		Reference:         body.TransactionReference,
		Status:            models.TransactionStatus(body.Status),
		ProviderReference: body.ProviderReference,
		Metadata:          body.Metadata,
	})
	if err != nil {
		respondPaymentsError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatTransaction(txn))
}
