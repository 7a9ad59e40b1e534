package payments

import "github.com/sokoyetu/marketplace/internal/models"

// entitlementRef is a tagged reference to exactly one purchasable
// entitlement. Transactions are only constructed through it, so the
// "neither or both linked" states cannot be produced by this package.
type entitlementRef struct {
	subscription *models.PremiumSubscription
	boost        *models.AdBoost
}

// subscriptionRef tags a subscription entitlement.
func subscriptionRef(s *models.PremiumSubscription) entitlementRef {
	return entitlementRef{subscription: s}
}

// boostRef tags an ad boost entitlement.
func boostRef(b *models.AdBoost) entitlementRef {
	return entitlementRef{boost: b}
}

// transactionType returns the transaction kind for the tagged entitlement.
func (r entitlementRef) transactionType() models.TransactionType {
	if r.subscription != nil {
		return models.TransactionTypeSubscription
	}
	return models.TransactionTypeAdBoost
}
