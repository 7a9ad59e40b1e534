package db

import (
	"encoding/json"
	"fmt"

	"github.com/sokoyetu/marketplace/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds catalog rows.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Ad{},
		&models.PricingPlan{},
		&models.PremiumSubscription{},
		&models.AdBoost{},
		&models.Transaction{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultPricingPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// seedPlan describes one default pricing catalog row.
type seedPlan struct {
	name         string
	planType     models.PlanType
	price        float64
	durationDays int
	features     []string
}

// defaultPricingPlans lists the catalog rows seeded on first migration.
// Prices are per duration unit in KES and mirror the purchase pricing table.
var defaultPricingPlans = []seedPlan{
	{"Premium", models.PlanTypeSubscription, 999, 30, []string{"Priority support", "Premium badge", "Unlimited active ads"}},
	{"Pro", models.PlanTypeSubscription, 2499, 30, []string{"Everything in Premium", "Seller analytics", "Bulk listing tools"}},
	{"Enterprise", models.PlanTypeSubscription, 4999, 30, []string{"Everything in Pro", "Dedicated account manager", "API access"}},
	{"VIP Ad", models.PlanTypeAdBoost, 499, 7, []string{"VIP placement", "Highlighted card"}},
	{"Featured Ad", models.PlanTypeAdBoost, 399, 7, []string{"Featured carousel slot"}},
	{"Top Ad", models.PlanTypeAdBoost, 299, 7, []string{"Top of category listing"}},
	{"Boosted Ad", models.PlanTypeAdBoost, 199, 7, []string{"Boosted search ranking"}},
}

// ensureDefaultPricingPlans seeds the pricing catalog when it is empty.
func ensureDefaultPricingPlans(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.PricingPlan{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count pricing plans: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	for i, seed := range defaultPricingPlans {
		rawFeatures, errMarshal := json.Marshal(seed.features)
		if errMarshal != nil {
			return fmt.Errorf("db: marshal plan features: %w", errMarshal)
		}
		plan := models.PricingPlan{
			Name:         seed.name,
			PlanType:     seed.planType,
			Price:        seed.price,
			Currency:     "KES",
			DurationDays: seed.durationDays,
			Features:     datatypes.JSON(rawFeatures),
			IsActive:     true,
			SortOrder:    i,
		}
		if errCreate := conn.Create(&plan).Error; errCreate != nil {
			return fmt.Errorf("db: seed pricing plan %q: %w", seed.name, errCreate)
		}
	}
	return nil
}
