package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/notify"
	"github.com/sokoyetu/marketplace/internal/pricing"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// referenceRetries bounds insert retries on a transaction reference collision.
const referenceRetries = 3

// Ledger creates payment transactions, applies gateway callbacks, and
// activates entitlements when payments settle.
type Ledger struct {
	db     *gorm.DB
	events notify.Publisher
}

// NewLedger constructs a Ledger.
func NewLedger(conn *gorm.DB, events notify.Publisher) *Ledger {
	if events == nil {
		events = &notify.LogPublisher{}
	}
	return &Ledger{db: conn, events: events}
}

// SubscriptionPurchase is the validated input for a subscription purchase.
type SubscriptionPurchase struct {
	SubscriptionType models.SubscriptionType
	DurationDays     int // Zero selects the 30-day default.
	PaymentMethod    models.PaymentMethod
	AutoRenew        bool
}

// BoostPurchase is the validated input for an ad boost purchase.
type BoostPurchase struct {
	AdID          uint64
	BoostType     models.BoostType
	DurationDays  int // Zero selects the 7-day default.
	PaymentMethod models.PaymentMethod
}

// PurchaseSubscription creates a pending subscription and its pending
// transaction in one database transaction and returns both.
func (l *Ledger) PurchaseSubscription(ctx context.Context, userID uint64, p SubscriptionPurchase) (*models.PremiumSubscription, *models.Transaction, error) {
	if !pricing.ValidSubscriptionType(p.SubscriptionType) {
		return nil, nil, fmt.Errorf("%w: invalid subscription_type", ErrValidation)
	}
	duration := p.DurationDays
	if duration == 0 {
		duration = pricing.SubscriptionDefaultDays
	}
	if duration < pricing.SubscriptionMinDays || duration > pricing.SubscriptionMaxDays {
		return nil, nil, fmt.Errorf("%w: duration_days must be between %d and %d",
			ErrValidation, pricing.SubscriptionMinDays, pricing.SubscriptionMaxDays)
	}
	if !validPaymentMethod(p.PaymentMethod) {
		return nil, nil, fmt.Errorf("%w: invalid payment_method", ErrValidation)
	}

	var user models.User
	if errFind := l.db.WithContext(ctx).First(&user, userID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, nil, fmt.Errorf("payments: load user: %w", errFind)
	}

	amount := pricing.SubscriptionAmount(p.SubscriptionType, duration)

	var subscription models.PremiumSubscription
	var txn *models.Transaction
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription = models.PremiumSubscription{
			UserID:           userID,
			SubscriptionType: p.SubscriptionType,
			Status:           models.SubscriptionStatusPending,
			Amount:           amount,
			Currency:         pricing.Currency,
			DurationDays:     duration,
			AutoRenew:        p.AutoRenew,
		}
		if errCreate := tx.Create(&subscription).Error; errCreate != nil {
			return fmt.Errorf("payments: create subscription: %w", errCreate)
		}
		created, errTxn := createTransaction(tx, userID, amount, p.PaymentMethod, subscriptionRef(&subscription))
		if errTxn != nil {
			return errTxn
		}
		txn = created
		return nil
	})
	if errTx != nil {
		return nil, nil, errTx
	}

	log.WithField("user_id", userID).
		WithField("reference", txn.TransactionReference).
		Info("subscription purchase initiated")
	return &subscription, txn, nil
}

// PurchaseBoost creates a pending boost and its pending transaction for an
// ad owned by the caller. Ads owned by other users report not found.
func (l *Ledger) PurchaseBoost(ctx context.Context, userID uint64, p BoostPurchase) (*models.AdBoost, *models.Transaction, error) {
	if !pricing.ValidBoostType(p.BoostType) {
		return nil, nil, fmt.Errorf("%w: invalid boost_type", ErrValidation)
	}
	duration := p.DurationDays
	if duration == 0 {
		duration = pricing.BoostDefaultDays
	}
	if duration < pricing.BoostMinDays || duration > pricing.BoostMaxDays {
		return nil, nil, fmt.Errorf("%w: duration_days must be between %d and %d",
			ErrValidation, pricing.BoostMinDays, pricing.BoostMaxDays)
	}
	if !validPaymentMethod(p.PaymentMethod) {
		return nil, nil, fmt.Errorf("%w: invalid payment_method", ErrValidation)
	}

	var ad models.Ad
	if errFind := l.db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", p.AdID, userID).
		First(&ad).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: ad %d", ErrNotFound, p.AdID)
		}
		return nil, nil, fmt.Errorf("payments: load ad: %w", errFind)
	}

	amount := pricing.BoostAmount(p.BoostType, duration)

	var boost models.AdBoost
	var txn *models.Transaction
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		boost = models.AdBoost{
			AdID:         ad.ID,
			BoostType:    p.BoostType,
			Status:       models.BoostStatusPending,
			Amount:       amount,
			Currency:     pricing.Currency,
			DurationDays: duration,
		}
		if errCreate := tx.Create(&boost).Error; errCreate != nil {
			return fmt.Errorf("payments: create boost: %w", errCreate)
		}
		created, errTxn := createTransaction(tx, userID, amount, p.PaymentMethod, boostRef(&boost))
		if errTxn != nil {
			return errTxn
		}
		txn = created
		return nil
	})
	if errTx != nil {
		return nil, nil, errTx
	}

	log.WithField("user_id", userID).
		WithField("ad_id", ad.ID).
		WithField("reference", txn.TransactionReference).
		Info("ad boost purchase initiated")
	return &boost, txn, nil
}

// CallbackInput is the payload delivered by the payment gateway.
type CallbackInput struct {
	Reference         string
	Status            models.TransactionStatus // completed or failed only.
	ProviderReference string
	Metadata          map[string]any
}

// ApplyCallback applies a gateway callback to the referenced transaction.
//
// A completed callback marks the transaction completed and activates the
// linked entitlement inside the same database transaction. Re-delivery of a
// completed callback for an already-completed transaction is a no-op that
// returns the stored state, so gateway retries cannot re-run activation.
func (l *Ledger) ApplyCallback(ctx context.Context, in CallbackInput) (*models.Transaction, error) {
	if in.Status != models.TransactionStatusCompleted && in.Status != models.TransactionStatusFailed {
		return nil, fmt.Errorf("%w: status must be completed or failed", ErrValidation)
	}
	if in.Reference == "" {
		return nil, fmt.Errorf("%w: transaction_reference is required", ErrValidation)
	}

	var result models.Transaction
	var replayed bool
	errTx := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("transaction_reference = ?", in.Reference)
		if !db.IsSQLite(tx) {
			// SQLite has a single writer; FOR UPDATE only exists on Postgres.
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var txn models.Transaction
		if errFind := q.First(&txn).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: transaction %s", ErrNotFound, in.Reference)
			}
			return fmt.Errorf("payments: load transaction: %w", errFind)
		}

		if txn.Status == in.Status {
			// Gateway retry of an already-applied callback.
			result = txn
			replayed = true
			return nil
		}
		if txn.Status != models.TransactionStatusPending && txn.Status != models.TransactionStatusProcessing {
			return fmt.Errorf("%w: transaction is %s", ErrInvalidState, txn.Status)
		}

		if in.ProviderReference != "" {
			txn.PaymentProviderReference = in.ProviderReference
		}
		merged, errMerge := mergeMetadata(txn.Metadata, in.Metadata)
		if errMerge != nil {
			return errMerge
		}
		txn.Metadata = merged
		txn.Status = in.Status
		txn.UpdatedAt = time.Now().UTC()

		if errSave := tx.Save(&txn).Error; errSave != nil {
			return fmt.Errorf("payments: update transaction: %w", errSave)
		}

		if in.Status == models.TransactionStatusCompleted {
			if errActivate := l.activate(tx, &txn, time.Now().UTC()); errActivate != nil {
				return errActivate
			}
		}
		result = txn
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	if !replayed {
		eventType := notify.EventPaymentCompleted
		if in.Status == models.TransactionStatusFailed {
			eventType = notify.EventPaymentFailed
		}
		l.events.Publish(ctx, eventType, map[string]any{
			"transaction_reference": result.TransactionReference,
			"user_id":               result.UserID,
			"amount":                result.Amount,
			"currency":              result.Currency,
		})
	}
	return &result, nil
}

// Transactions returns the caller's transactions, newest first.
func (l *Ledger) Transactions(ctx context.Context, userID uint64) ([]models.Transaction, error) {
	var rows []models.Transaction
	if errFind := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("payments: list transactions: %w", errFind)
	}
	return rows, nil
}

// Transaction returns one of the caller's transactions by id.
func (l *Ledger) Transaction(ctx context.Context, userID, id uint64) (*models.Transaction, error) {
	var txn models.Transaction
	if errFind := l.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&txn).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("payments: load transaction: %w", errFind)
	}
	return &txn, nil
}

// createTransaction inserts a pending transaction for the tagged
// entitlement, retrying reference generation on a unique-index collision.
func createTransaction(tx *gorm.DB, userID uint64, amount float64, method models.PaymentMethod, ref entitlementRef) (*models.Transaction, error) {
	for attempt := 0; attempt < referenceRetries; attempt++ {
		reference, errRef := NewTransactionReference(time.Now())
		if errRef != nil {
			return nil, errRef
		}
		txn := models.Transaction{
			UserID:               userID,
			TransactionType:      ref.transactionType(),
			Amount:               amount,
			Currency:             pricing.Currency,
			PaymentMethod:        method,
			Status:               models.TransactionStatusPending,
			TransactionReference: reference,
		}
		if ref.subscription != nil {
			txn.SubscriptionID = &ref.subscription.ID
		}
		if ref.boost != nil {
			txn.AdBoostID = &ref.boost.ID
		}
		errCreate := tx.Create(&txn).Error
		if errCreate == nil {
			return &txn, nil
		}
		if !errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("payments: create transaction: %w", errCreate)
		}
		log.WithField("reference", reference).Warn("transaction reference collision, regenerating")
	}
	return nil, fmt.Errorf("payments: transaction reference collisions exhausted %d attempts", referenceRetries)
}

// mergeMetadata merges incoming callback metadata over the stored map.
func mergeMetadata(stored datatypes.JSON, incoming map[string]any) (datatypes.JSON, error) {
	if len(incoming) == 0 {
		return stored, nil
	}
	merged := make(map[string]any)
	if len(stored) > 0 {
		if errUnmarshal := json.Unmarshal(stored, &merged); errUnmarshal != nil {
			return nil, fmt.Errorf("payments: decode stored metadata: %w", errUnmarshal)
		}
	}
	for k, v := range incoming {
		merged[k] = v
	}
	raw, errMarshal := json.Marshal(merged)
	if errMarshal != nil {
		return nil, fmt.Errorf("payments: encode metadata: %w", errMarshal)
	}
	return datatypes.JSON(raw), nil
}

// validPaymentMethod reports whether the method is a supported channel.
func validPaymentMethod(m models.PaymentMethod) bool {
	switch m {
	case models.PaymentMethodMpesa, models.PaymentMethodCard, models.PaymentMethodPaypal,
		models.PaymentMethodBankTransfer, models.PaymentMethodOther:
		return true
	}
	return false
}
