package repository

import (
	"gorm.io/gorm"

	"molliebridge/internal/models"
)

// AttemptRepository handles payment attempt journal operations.
type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Record inserts a new attempt row.
func (r *AttemptRepository) Record(attempt *models.PaymentAttempt) error {
	return r.db.Create(attempt).Error
}

// Update applies column updates to the attempt identified by run id.
func (r *AttemptRepository) Update(runID string, updates map[string]interface{}) error {
	return r.db.Model(&models.PaymentAttempt{}).Where("run_id = ?", runID).Updates(updates).Error
}

// FindByRunID returns a single attempt by run id.
func (r *AttemptRepository) FindByRunID(runID string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := r.db.Where("run_id = ?", runID).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByOrderID returns attempts for a backend order, newest first.
func (r *AttemptRepository) FindByOrderID(orderID string) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

// ListPending returns attempts still awaiting payment, oldest first, capped
// at limit.
func (r *AttemptRepository) ListPending(limit int) ([]models.PaymentAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	var attempts []models.PaymentAttempt
	err := r.db.
		Where("state = ? AND transaction_id <> ''", models.AttemptStatePending).
		Order("created_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
