package db

import (
	"testing"

	"github.com/sokoyetu/marketplace/internal/models"
)

func TestMigrate_SeedsPricingPlans(t *testing.T) {
	conn, err := Open("file::memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var count int64
	if errCount := conn.Model(&models.PricingPlan{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != int64(len(defaultPricingPlans)) {
		t.Fatalf("expected %d seeded plans, got %d", len(defaultPricingPlans), count)
	}

	// Running migrations again must not duplicate the catalog.
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}
	if errCount := conn.Model(&models.PricingPlan{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != int64(len(defaultPricingPlans)) {
		t.Fatalf("expected %d plans after re-migrate, got %d", len(defaultPricingPlans), count)
	}
}
