package models

import "time"

// Category represents a browse tree node for ads.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name string `gorm:"type:varchar(100);not null"`            // Display name.
	Slug string `gorm:"type:varchar(120);not null;uniqueIndex"` // Unique URL slug.

	ParentID *uint64   `gorm:"index"`                  // Optional parent category ID.
	Parent   *Category `gorm:"foreignKey:ParentID"`    // Optional parent category.

	IsActive  bool `gorm:"not null;default:true"` // Whether the category is browsable.
	SortOrder int  `gorm:"not null;default:0"`    // Display ordering weight.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Location represents a city/county pair ads can be posted in.
type Location struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	City   string `gorm:"type:varchar(100);not null;index"` // City name.
	County string `gorm:"type:varchar(100);not null;index"` // County name.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
