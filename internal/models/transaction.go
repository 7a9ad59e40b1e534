package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionType represents what a payment transaction purchased.
type TransactionType string

// TransactionType constants define transaction kinds.
const (
	// TransactionTypeSubscription pays for a premium subscription.
	TransactionTypeSubscription TransactionType = "subscription"
	// TransactionTypeAdBoost pays for an ad boost.
	TransactionTypeAdBoost TransactionType = "ad_boost"
	// TransactionTypeFeaturedAd pays for a featured ad slot.
	TransactionTypeFeaturedAd TransactionType = "featured_ad"
	// TransactionTypeOther covers ad-hoc charges.
	TransactionTypeOther TransactionType = "other"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

// TransactionStatus constants define transaction lifecycle states.
const (
	// TransactionStatusPending marks a transaction awaiting the gateway.
	TransactionStatusPending TransactionStatus = "pending"
	// TransactionStatusProcessing marks a transaction in flight at the gateway.
	TransactionStatusProcessing TransactionStatus = "processing"
	// TransactionStatusCompleted marks a settled transaction. Terminal.
	TransactionStatusCompleted TransactionStatus = "completed"
	// TransactionStatusFailed marks a gateway-rejected transaction.
	TransactionStatusFailed TransactionStatus = "failed"
	// TransactionStatusRefunded marks a refunded transaction.
	TransactionStatusRefunded TransactionStatus = "refunded"
)

// PaymentMethod represents how a transaction is paid.
type PaymentMethod string

// PaymentMethod constants define supported payment channels.
const (
	// PaymentMethodMpesa pays via M-Pesa.
	PaymentMethodMpesa PaymentMethod = "mpesa"
	// PaymentMethodCard pays via credit/debit card.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodPaypal pays via PayPal.
	PaymentMethodPaypal PaymentMethod = "paypal"
	// PaymentMethodBankTransfer pays via bank transfer.
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	// PaymentMethodOther covers out-of-band payments.
	PaymentMethodOther PaymentMethod = "other"
)

// Transaction records a single payment attempt and its outcome.
//
// Exactly one of SubscriptionID or AdBoostID is set for the transaction
// types this service creates; the ledger only constructs transactions
// through an entitlement reference, so both-or-neither never occurs.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index:idx_transactions_user_created"` // Paying user ID.
	User   User   `gorm:"foreignKey:UserID"`                            // Paying user record.

	TransactionType TransactionType `gorm:"type:varchar(20);not null"` // What was purchased.

	SubscriptionID *uint64              `gorm:"index"`                     // Linked subscription ID.
	Subscription   *PremiumSubscription `gorm:"foreignKey:SubscriptionID"` // Linked subscription record.

	AdBoostID *uint64  `gorm:"index"`                // Linked ad boost ID.
	AdBoost   *AdBoost `gorm:"foreignKey:AdBoostID"` // Linked ad boost record.

	Amount   float64 `gorm:"type:decimal(10,2);not null;default:0"` // Charged amount.
	Currency string  `gorm:"type:varchar(3);not null;default:KES"`  // Charge currency.

	PaymentMethod PaymentMethod     `gorm:"type:varchar(20);not null"`                     // Payment channel.
	Status        TransactionStatus `gorm:"type:varchar(20);not null;default:pending;index"` // Lifecycle status.

	TransactionReference     string `gorm:"type:varchar(100);not null;uniqueIndex"` // External correlation reference.
	PaymentProviderReference string `gorm:"type:varchar(100)"`                      // Gateway-side reference.

	Metadata datatypes.JSON `gorm:"type:jsonb"` // Opaque gateway metadata.
	Notes    string         `gorm:"type:text"`  // Free-form operator notes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_transactions_user_created"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`                                     // Last update timestamp.
}
