package payments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/models"
	"gorm.io/gorm"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Email:    email,
		Username: email,
		Password: "x",
		Active:   true,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAd(t *testing.T, conn *gorm.DB, sellerID uint64, title string) models.Ad {
	t.Helper()
	category := models.Category{Name: "Electronics", Slug: "electronics-" + uuid.NewString(), IsActive: true}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	ad := models.Ad{
		Title:       title,
		Slug:        title + "-" + uuid.NewString(),
		Description: "test item",
		Price:       1000,
		Currency:    "KES",
		Condition:   models.AdConditionUsed,
		CategoryID:  category.ID,
		SellerID:    sellerID,
		Status:      models.AdStatusActive,
		PremiumType: models.PremiumTypeBasic,
	}
	if err := conn.Create(&ad).Error; err != nil {
		t.Fatalf("create ad: %v", err)
	}
	return ad
}

var referencePattern = regexp.MustCompile(`^TXN-\d{8}-[0-9A-F]{16}$`)

func TestPurchaseSubscription_CreatesPendingPair(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	subscription, txn, err := ledger.PurchaseSubscription(context.Background(), user.ID, SubscriptionPurchase{
		SubscriptionType: models.SubscriptionTypePremium,
		DurationDays:     30,
		PaymentMethod:    models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if subscription.Status != models.SubscriptionStatusPending {
		t.Fatalf("expected pending subscription, got %s", subscription.Status)
	}
	if subscription.Amount != 999 {
		t.Fatalf("expected amount 999, got %v", subscription.Amount)
	}
	if subscription.StartDate != nil || subscription.EndDate != nil {
		t.Fatalf("expected unset dates before activation")
	}
	if txn.Status != models.TransactionStatusPending {
		t.Fatalf("expected pending transaction, got %s", txn.Status)
	}
	if txn.Amount != 999 || txn.Currency != "KES" {
		t.Fatalf("expected 999 KES, got %v %s", txn.Amount, txn.Currency)
	}
	if txn.TransactionType != models.TransactionTypeSubscription {
		t.Fatalf("expected subscription transaction, got %s", txn.TransactionType)
	}
	if txn.SubscriptionID == nil || *txn.SubscriptionID != subscription.ID {
		t.Fatalf("expected transaction linked to subscription %d", subscription.ID)
	}
	if txn.AdBoostID != nil {
		t.Fatalf("expected no boost link on subscription transaction")
	}
	if !referencePattern.MatchString(txn.TransactionReference) {
		t.Fatalf("bad reference format: %q", txn.TransactionReference)
	}
}

func TestPurchaseSubscription_DefaultDuration(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	subscription, _, err := ledger.PurchaseSubscription(context.Background(), user.ID, SubscriptionPurchase{
		SubscriptionType: models.SubscriptionTypePremium,
		PaymentMethod:    models.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if subscription.DurationDays != 30 {
		t.Fatalf("expected default 30 days, got %d", subscription.DurationDays)
	}
}

func TestPurchaseSubscription_Validation(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	cases := []SubscriptionPurchase{
		{SubscriptionType: "gold", DurationDays: 30, PaymentMethod: models.PaymentMethodMpesa},
		{SubscriptionType: models.SubscriptionTypePremium, DurationDays: 400, PaymentMethod: models.PaymentMethodMpesa},
		{SubscriptionType: models.SubscriptionTypePremium, DurationDays: -1, PaymentMethod: models.PaymentMethodMpesa},
		{SubscriptionType: models.SubscriptionTypePremium, DurationDays: 30, PaymentMethod: "cash"},
	}
	for i, p := range cases {
		if _, _, err := ledger.PurchaseSubscription(context.Background(), user.ID, p); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	var count int64
	if err := conn.Model(&models.Transaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no transactions after rejected input, got %d", count)
	}
}

func TestApplyCallback_CompletedActivatesSubscription(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	subscription, txn, err := ledger.PurchaseSubscription(context.Background(), user.ID, SubscriptionPurchase{
		SubscriptionType: models.SubscriptionTypePremium,
		DurationDays:     30,
		PaymentMethod:    models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	updated, err := ledger.ApplyCallback(context.Background(), CallbackInput{
		Reference:         txn.TransactionReference,
		Status:            models.TransactionStatusCompleted,
		ProviderReference: "MPESA-XYZ",
		Metadata:          map[string]any{"phone": "+254700000000"},
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if updated.Status != models.TransactionStatusCompleted {
		t.Fatalf("expected completed transaction, got %s", updated.Status)
	}
	if updated.PaymentProviderReference != "MPESA-XYZ" {
		t.Fatalf("expected provider reference to be stored")
	}

	var stored models.PremiumSubscription
	if errFind := conn.First(&stored, subscription.ID).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if stored.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active subscription, got %s", stored.Status)
	}
	if stored.StartDate == nil || stored.EndDate == nil {
		t.Fatalf("expected dates set on activation")
	}
	wantEnd := stored.StartDate.AddDate(0, 0, 30)
	if !stored.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end = start + 30d, got start=%v end=%v", stored.StartDate, stored.EndDate)
	}
	if !stored.IsActive(time.Now()) {
		t.Fatalf("expected subscription active now")
	}

	var owner models.User
	if errFind := conn.First(&owner, user.ID).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if !owner.IsPremium {
		t.Fatalf("expected user premium flag set")
	}
}

func TestApplyCallback_ReplayIsNoOp(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	subscription, txn, err := ledger.PurchaseSubscription(context.Background(), user.ID, SubscriptionPurchase{
		SubscriptionType: models.SubscriptionTypePremium,
		DurationDays:     30,
		PaymentMethod:    models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	input := CallbackInput{
		Reference: txn.TransactionReference,
		Status:    models.TransactionStatusCompleted,
	}
	if _, errFirst := ledger.ApplyCallback(context.Background(), input); errFirst != nil {
		t.Fatalf("first callback: %v", errFirst)
	}

	var before models.PremiumSubscription
	if errFind := conn.First(&before, subscription.ID).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}

	replayed, errSecond := ledger.ApplyCallback(context.Background(), input)
	if errSecond != nil {
		t.Fatalf("replayed callback should succeed, got %v", errSecond)
	}
	if replayed.Status != models.TransactionStatusCompleted {
		t.Fatalf("expected stored completed state, got %s", replayed.Status)
	}

	var after models.PremiumSubscription
	if errFind := conn.First(&after, subscription.ID).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if !after.EndDate.Equal(*before.EndDate) || !after.StartDate.Equal(*before.StartDate) {
		t.Fatalf("replay must not re-run activation: before=%v/%v after=%v/%v",
			before.StartDate, before.EndDate, after.StartDate, after.EndDate)
	}
}

func TestApplyCallback_FailedDoesNotActivate(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "buyer@example.com")

	subscription, txn, err := ledger.PurchaseSubscription(context.Background(), user.ID, SubscriptionPurchase{
		SubscriptionType: models.SubscriptionTypePro,
		DurationDays:     30,
		PaymentMethod:    models.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	updated, err := ledger.ApplyCallback(context.Background(), CallbackInput{
		Reference: txn.TransactionReference,
		Status:    models.TransactionStatusFailed,
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if updated.Status != models.TransactionStatusFailed {
		t.Fatalf("expected failed transaction, got %s", updated.Status)
	}

	var stored models.PremiumSubscription
	if errFind := conn.First(&stored, subscription.ID).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if stored.Status != models.SubscriptionStatusPending {
		t.Fatalf("failed payment must leave subscription pending, got %s", stored.Status)
	}

	var owner models.User
	if errFind := conn.First(&owner, user.ID).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if owner.IsPremium {
		t.Fatalf("failed payment must not grant premium")
	}
}

func TestApplyCallback_UnknownReference(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)

	_, err := ledger.ApplyCallback(context.Background(), CallbackInput{
		Reference: "TXN-20260101-DEADBEEFDEADBEEF",
		Status:    models.TransactionStatusCompleted,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplyCallback_RejectsOtherStatuses(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)

	for _, status := range []models.TransactionStatus{
		models.TransactionStatusPending,
		models.TransactionStatusProcessing,
		models.TransactionStatusRefunded,
		"paid",
	} {
		_, err := ledger.ApplyCallback(context.Background(), CallbackInput{Reference: "TXN-X", Status: status})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("status %q: expected validation error, got %v", status, err)
		}
	}
}

func TestPurchaseBoost_AndActivation(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "seller@example.com")
	ad := createAd(t, conn, user.ID, "iphone-13")

	boost, txn, err := ledger.PurchaseBoost(context.Background(), user.ID, BoostPurchase{
		AdID:          ad.ID,
		BoostType:     models.BoostTypeVIP,
		DurationDays:  7,
		PaymentMethod: models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase boost: %v", err)
	}
	if boost.Amount != 499 {
		t.Fatalf("expected amount 499, got %v", boost.Amount)
	}
	if txn.TransactionType != models.TransactionTypeAdBoost {
		t.Fatalf("expected ad_boost transaction, got %s", txn.TransactionType)
	}
	if txn.AdBoostID == nil || *txn.AdBoostID != boost.ID {
		t.Fatalf("expected transaction linked to boost %d", boost.ID)
	}
	if txn.SubscriptionID != nil {
		t.Fatalf("expected no subscription link on boost transaction")
	}

	if _, errCb := ledger.ApplyCallback(context.Background(), CallbackInput{
		Reference: txn.TransactionReference,
		Status:    models.TransactionStatusCompleted,
	}); errCb != nil {
		t.Fatalf("callback: %v", errCb)
	}

	var storedBoost models.AdBoost
	if errFind := conn.First(&storedBoost, boost.ID).Error; errFind != nil {
		t.Fatalf("load boost: %v", errFind)
	}
	if storedBoost.Status != models.BoostStatusActive {
		t.Fatalf("expected active boost, got %s", storedBoost.Status)
	}
	wantEnd := storedBoost.StartDate.AddDate(0, 0, 7)
	if !storedBoost.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end = start + 7d")
	}

	var storedAd models.Ad
	if errFind := conn.First(&storedAd, ad.ID).Error; errFind != nil {
		t.Fatalf("load ad: %v", errFind)
	}
	if storedAd.PremiumType != models.PremiumTypeVIP {
		t.Fatalf("expected ad premium_type=vip after activation, got %s", storedAd.PremiumType)
	}
}

func TestPurchaseBoost_ForeignAdNotFound(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	owner := createUser(t, conn, "owner@example.com")
	other := createUser(t, conn, "other@example.com")
	ad := createAd(t, conn, owner.ID, "bicycle")

	_, _, err := ledger.PurchaseBoost(context.Background(), other.ID, BoostPurchase{
		AdID:          ad.ID,
		BoostType:     models.BoostTypeTop,
		DurationDays:  7,
		PaymentMethod: models.PaymentMethodMpesa,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign ad, got %v", err)
	}
}

func TestLastBoostWins(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn, nil)
	user := createUser(t, conn, "seller@example.com")
	ad := createAd(t, conn, user.ID, "sofa-set")

	_, txnVIP, err := ledger.PurchaseBoost(context.Background(), user.ID, BoostPurchase{
		AdID: ad.ID, BoostType: models.BoostTypeVIP, DurationDays: 7, PaymentMethod: models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase vip: %v", err)
	}
	_, txnTop, err := ledger.PurchaseBoost(context.Background(), user.ID, BoostPurchase{
		AdID: ad.ID, BoostType: models.BoostTypeTop, DurationDays: 7, PaymentMethod: models.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("purchase top: %v", err)
	}

	if _, errCb := ledger.ApplyCallback(context.Background(), CallbackInput{Reference: txnVIP.TransactionReference, Status: models.TransactionStatusCompleted}); errCb != nil {
		t.Fatalf("vip callback: %v", errCb)
	}
	if _, errCb := ledger.ApplyCallback(context.Background(), CallbackInput{Reference: txnTop.TransactionReference, Status: models.TransactionStatusCompleted}); errCb != nil {
		t.Fatalf("top callback: %v", errCb)
	}

	var storedAd models.Ad
	if errFind := conn.First(&storedAd, ad.ID).Error; errFind != nil {
		t.Fatalf("load ad: %v", errFind)
	}
	if storedAd.PremiumType != models.PremiumTypeTop {
		t.Fatalf("expected last activation to win, got %s", storedAd.PremiumType)
	}
}
