package models

import "time"

// User represents a marketplace account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique display handle.
	Password string `gorm:"type:text;not null"`             // Hashed password.
	Phone    string `gorm:"type:varchar(20)"`               // Contact phone number.

	IsPremium  bool `gorm:"not null;default:false"` // Active premium subscription flag.
	IsVerified bool `gorm:"not null;default:false"` // Identity verification flag.
	Active     bool `gorm:"not null;default:true"`  // Whether the user can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Admin represents a back-office operator account.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
