package database

import (
	"errors"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/utils"
)

// Migrate creates or updates the schema for all application models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
}

// SeedAdmin makes sure an administrator account exists. Username and password
// come from ADMIN_USERNAME / ADMIN_PASSWORD; nothing happens when either is
// unset or the account is already there.
func SeedAdmin(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: username,
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[database] seeded admin account %q", username)
	return nil
}
