package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sokoyetu/marketplace/internal/models"
	"github.com/sokoyetu/marketplace/internal/security"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Environment variables used to seed the first back-office admin.
const (
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// EnsureAdminFromEnv creates the first admin account from ADMIN_USERNAME /
// ADMIN_PASSWORD when no admin exists yet. Without the variables the admin
// API stays locked until an admin row is created out of band.
func EnsureAdminFromEnv(conn *gorm.DB) error {
	username := strings.TrimSpace(os.Getenv(EnvAdminUsername))
	password := os.Getenv(EnvAdminPassword)
	if username == "" || password == "" {
		return nil
	}
	return EnsureAdmin(conn, username, password)
}

// EnsureAdmin creates an admin account unless one already exists.
func EnsureAdmin(conn *gorm.DB, username, password string) error {
	if len(password) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}

	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	hashed, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash admin password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:  username,
		Password:  hashed,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.WithField("username", username).Info("seeded initial admin account")
	return nil
}
