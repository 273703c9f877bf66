package models

import "time"

// Payment attempt states recorded in the journal.
const (
	AttemptStateCreated  = "created"
	AttemptStatePending  = "pending_payment"
	AttemptStateCanceled = "canceled"
	AttemptStatePaid     = "paid"
	AttemptStateExpired  = "expired"
	AttemptStateFailed   = "failed"
)

// PaymentAttempt maps to the `payment_attempt` table. One row per saga run.
type PaymentAttempt struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunID         string    `gorm:"column:run_id;size:64;uniqueIndex" json:"run_id"`
	OrderID       string    `gorm:"column:order_id;size:64;index" json:"order_id"`
	IncrementID   string    `gorm:"column:increment_id;size:64" json:"increment_id"`
	TransactionID string    `gorm:"column:transaction_id;size:64" json:"transaction_id"`
	Method        string    `gorm:"column:method;size:64" json:"method"`
	Amount        string    `gorm:"column:amount;size:64" json:"amount"`
	State         string    `gorm:"column:state;size:32;index" json:"state"`
	FailReason    string    `gorm:"column:fail_reason;type:text" json:"fail_reason"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempt"
}
