// seed-admin creates or updates the platform admin user (username: adrankAdmin).
// The admin password defaults below but should be overridden with ADMIN_PASSWORD.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"gorm.io/gorm"
)

const (
	adminUsername = "adrankAdmin"
	adminName     = "AdRank Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Adr@nkAdmin1"
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)
	active := true

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			BusinessId: uuid.NewString(),
			Username:   adminUsername,
			Name:       adminName,
			Password:   hashedStr,
			IsActive:   &active,
			Role:       models.UserRoleAdmin,
		}
		if seedErr := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			wallet := models.Wallet{BusinessId: u.BusinessId, UserId: u.ID}
			return tx.Create(&wallet).Error
		}); seedErr != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", seedErr)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q (role=Admin)\n", adminUsername)
		return
	}

	// Update existing user: ensure password and admin role.
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).Updates(map[string]any{
		"password":  hashedStr,
		"name":      adminName,
		"is_active": &active,
		"role":      models.UserRoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	_ = existing.RemoveInstanceRedis()
	fmt.Printf("Updated admin user: username=%q (role=Admin)\n", adminUsername)
}
