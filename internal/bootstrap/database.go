package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"molliebridge/internal/models"
)

// Migrate ensures the attempt journal table exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.PaymentAttempt{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
