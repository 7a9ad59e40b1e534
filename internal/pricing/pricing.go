// Package pricing holds the marketplace price table as pure lookups so the
// amounts charged by the ledger can be tested independently of any request
// handling or storage.
package pricing

import (
	"math"

	"github.com/sokoyetu/marketplace/internal/models"
)

// Currency is the settlement currency for all marketplace charges.
const Currency = "KES"

// Duration bounds and defaults for purchase requests, in days.
const (
	SubscriptionDefaultDays = 30
	SubscriptionMinDays     = 1
	SubscriptionMaxDays     = 365

	BoostDefaultDays = 7
	BoostMinDays     = 1
	BoostMaxDays     = 30
)

// subscriptionRates maps tiers to the price of one 30-day unit.
var subscriptionRates = map[models.SubscriptionType]float64{
	models.SubscriptionTypeBasic:      0,
	models.SubscriptionTypePremium:    999,
	models.SubscriptionTypePro:        2499,
	models.SubscriptionTypeEnterprise: 4999,
}

// boostRates maps boost tiers to the price of one 7-day unit.
var boostRates = map[models.BoostType]float64{
	models.BoostTypeVIP:      499,
	models.BoostTypeTop:      299,
	models.BoostTypeBoosted:  199,
	models.BoostTypeFeatured: 399,
}

// SubscriptionAmount returns the charge for a subscription tier prorated by
// durationDays against the 30-day unit price. Unknown tiers price at zero.
func SubscriptionAmount(tier models.SubscriptionType, durationDays int) float64 {
	rate := subscriptionRates[tier]
	return round2(rate * float64(durationDays) / float64(SubscriptionDefaultDays))
}

// BoostAmount returns the charge for a boost tier prorated by durationDays
// against the 7-day unit price. Unknown tiers price at zero.
func BoostAmount(tier models.BoostType, durationDays int) float64 {
	rate := boostRates[tier]
	return round2(rate * float64(durationDays) / float64(BoostDefaultDays))
}

// ValidSubscriptionType reports whether the tier is purchasable.
func ValidSubscriptionType(tier models.SubscriptionType) bool {
	_, ok := subscriptionRates[tier]
	return ok
}

// ValidBoostType reports whether the boost tier is purchasable.
func ValidBoostType(tier models.BoostType) bool {
	_, ok := boostRates[tier]
	return ok
}

// round2 rounds to two decimal places, the precision of the amount columns.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
