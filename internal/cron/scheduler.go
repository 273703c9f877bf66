package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
	"molliebridge/internal/repository"
)

// PaymentLookup is the slice of the gateway client the sweep consumes.
type PaymentLookup interface {
	GetPayment(ctx context.Context, id string) (*mollie.PaymentLookupResponse, error)
}

// Scheduler periodically reconciles journaled attempts that are still
// pending: the shopper may have paid, abandoned or let the payment expire
// after the redirect, and the storefront never hears about it otherwise.
type Scheduler struct {
	cron   *cron.Cron
	repo   *repository.AttemptRepository
	api    PaymentLookup
	spec   string
	logger *zap.Logger
}

// New creates a reconciliation scheduler. spec is a 6-field cron expression.
func New(repo *repository.AttemptRepository, api PaymentLookup, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		repo:   repo,
		api:    api,
		spec:   spec,
		logger: logger,
	}
}

// Start registers and starts the sweep job.
func (s *Scheduler) Start() {
	s.logger.Info("Starting reconciliation scheduler", zap.String("spec", s.spec))
	s.cron.AddFunc(s.spec, func() {
		s.logger.Debug("Running: pending payment sweep")
		s.sweepPending()
	})
	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once running
// jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepPending() {
	attempts, err := s.repo.ListPending(100)
	if err != nil {
		s.logger.Error("Pending sweep query failed", zap.Error(err))
		return
	}

	for _, attempt := range attempts {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		state := s.resolveState(ctx, attempt)
		cancel()
		if state == "" {
			continue
		}

		if err := s.repo.Update(attempt.RunID, map[string]interface{}{"state": state}); err != nil {
			s.logger.Error("Attempt update failed",
				zap.String("run_id", attempt.RunID),
				zap.Error(err))
			continue
		}
		s.logger.Info("Attempt reconciled",
			zap.String("run_id", attempt.RunID),
			zap.String("order_id", attempt.OrderID),
			zap.String("state", state))
	}
}

// resolveState maps the gateway payment status onto a journal state. An
// empty result means the attempt stays pending.
func (s *Scheduler) resolveState(ctx context.Context, attempt models.PaymentAttempt) string {
	resp, err := s.api.GetPayment(ctx, attempt.TransactionID)
	if err != nil {
		s.logger.Warn("Payment lookup failed",
			zap.String("transaction_id", attempt.TransactionID),
			zap.Error(err))
		return ""
	}
	if resp.Code != 200 {
		return ""
	}

	switch resp.Result.Status {
	case "paid":
		return models.AttemptStatePaid
	case "expired":
		return models.AttemptStateExpired
	case "canceled":
		return models.AttemptStateCanceled
	case "failed":
		return models.AttemptStateFailed
	default:
		return ""
	}
}
