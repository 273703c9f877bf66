package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"molliebridge/internal/bus"
	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
	"molliebridge/internal/registry"
)

// State names the orchestrator's position in the place-order sequence.
type State string

const (
	StateIdle                 State = "idle"
	StateFetchingOrderDetails State = "fetching_order_details"
	StateValidatingHash       State = "validating_hash"
	StateCreatingPayment      State = "creating_payment"
	StateLinkingTransaction   State = "linking_transaction"
	StateRedirecting          State = "redirecting"
	StateFailed               State = "failed"
)

// GatewayAPI is the slice of the gateway client the orchestrator consumes.
type GatewayAPI interface {
	FetchOrderDetails(ctx context.Context, orderID string) (*mollie.OrderDetailsResponse, error)
	ValidateHash(ctx context.Context, data models.HashData) (int, error)
	CreatePayment(ctx context.Context, req mollie.PaymentRequest) (*mollie.PaymentResponse, error)
	LinkTransaction(ctx context.Context, data models.TransactionData) (int, error)
	PostOrderComment(ctx context.Context, comment models.OrderComment) error
}

// Navigator moves the shopper to another route or to the gateway's hosted page.
type Navigator interface {
	Push(route string)
}

// Guard admits one payment creation per backend order id.
type Guard interface {
	Seen(ctx context.Context, key string) (bool, error)
}

// Journal records saga runs for later reconciliation. A nil journal disables
// recording without affecting orchestration.
type Journal interface {
	Record(attempt *models.PaymentAttempt) error
	Update(runID string, updates map[string]interface{}) error
}

// Config is the orchestrator's configuration surface.
type Config struct {
	CurrencyCode  string
	ErrorURL      string
	RedirectBase  string
	RedirectDelay time.Duration
}

// Orchestrator drives the post-order-placement payment saga: order lookup,
// hash validation, payment creation, transaction linkage, redirect. Steps run
// strictly in order; any failure triggers the uniform compensation sequence
// and halts the run.
type Orchestrator struct {
	api     GatewayAPI
	cart    CartTotals
	session *Session
	guard   Guard
	journal Journal
	nav     Navigator
	bus     *bus.Bus
	cfg     Config
	logger  *zap.Logger
}

func NewOrchestrator(
	api GatewayAPI,
	cart CartTotals,
	session *Session,
	guard Guard,
	journal Journal,
	nav Navigator,
	b *bus.Bus,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		api:     api,
		cart:    cart,
		session: session,
		guard:   guard,
		journal: journal,
		nav:     nav,
		bus:     b,
		cfg:     cfg,
		logger:  logger,
	}
}

// run is the mutable state of one saga execution. Each step consumes what the
// previous one produced; nothing is cached across runs.
type run struct {
	id      string
	state   State
	orderID string
	hash    models.HashData
	tx      models.TransactionData
}

// sagaSteps is the transition table. Order is the contract: step N never
// starts before step N-1 returned.
var sagaSteps = []struct {
	state State
	fn    func(*Orchestrator, context.Context, *run) error
}{
	{StateFetchingOrderDetails, (*Orchestrator).fetchOrderDetails},
	{StateValidatingHash, (*Orchestrator).validateHash},
	{StateCreatingPayment, (*Orchestrator).createPayment},
	{StateLinkingTransaction, (*Orchestrator).linkTransaction},
	{StateRedirecting, (*Orchestrator).redirect},
}

// OnOrderPlaced is the bus handler armed by the ArmingController.
func (o *Orchestrator) OnOrderPlaced(payload interface{}) {
	placed, ok := payload.(bus.OrderPlaced)
	if !ok || placed.OrderID == "" {
		o.logger.Warn("Order-placed signal without backend order id")
		return
	}
	o.Run(context.Background(), placed.OrderID)
}

// Run executes the saga for one backend order. It returns the transaction
// data on success; on failure compensation has already run and the returned
// error is the triggering StepError.
func (o *Orchestrator) Run(ctx context.Context, orderID string) (*models.TransactionData, error) {
	o.bus.Publish(bus.TopicProgressStart, "Creating payment request...")

	r := &run{
		id:      uuid.New().String(),
		state:   StateIdle,
		orderID: orderID,
	}
	o.record(r)

	for _, step := range sagaSteps {
		r.state = step.state
		o.logger.Info("Saga step",
			zap.String("run_id", r.id),
			zap.String("order_id", r.orderID),
			zap.String("state", string(r.state)))
		if err := step.fn(o, ctx, r); err != nil {
			failed := r.state
			r.state = StateFailed
			o.compensate(ctx, r, failed, err)
			return nil, err
		}
	}

	return &r.tx, nil
}

func (o *Orchestrator) fetchOrderDetails(ctx context.Context, r *run) error {
	resp, err := o.api.FetchOrderDetails(ctx, r.orderID)
	if err != nil {
		return transportErr(err)
	}
	if resp.Code != 200 {
		return integrityErr("Could not fetch backend order details")
	}

	r.hash = models.HashData{
		Hash:        resp.Result.Hash,
		CartTotal:   formatAmount(o.cart.GrandTotal()),
		OrderID:     r.orderID,
		IncrementID: resp.Result.IncrementID,
	}
	o.logger.Info("Hash data", zap.Any("hash_data", r.hash))
	return nil
}

func (o *Orchestrator) validateHash(ctx context.Context, r *run) error {
	code, err := o.api.ValidateHash(ctx, r.hash)
	if err != nil {
		return transportErr(err)
	}
	if code != 200 {
		return integrityErr("Hashes don't match")
	}
	return nil
}

func (o *Orchestrator) createPayment(ctx context.Context, r *run) error {
	if o.guard != nil {
		dup, err := o.guard.Seen(ctx, r.orderID)
		if err != nil {
			o.logger.Warn("Order guard unavailable", zap.Error(err))
		} else if dup {
			return backendErr("Payment already requested for this order")
		}
	}

	req := mollie.PaymentRequest{
		Amount: mollie.Amount{
			Currency: o.cfg.CurrencyCode,
			Value:    formatAmount(o.cart.GrandTotal()),
		},
		OrderID:     r.orderID,
		Hash:        r.hash.Hash,
		Description: "Order # " + r.hash.IncrementID,
		RedirectURL: o.cfg.RedirectBase + "/order-status/",
		Method:      o.session.Method(),
	}
	if req.Method == registry.MethodIdeal {
		req.Issuer = o.session.Issuer()
	}
	o.logger.Info("Collected payment data", zap.Any("payment", req))

	resp, err := o.api.CreatePayment(ctx, req)
	if err != nil {
		return transportErr(err)
	}
	if resp.Code != 200 {
		return gatewayErr("API extension VS failed")
	}
	if resp.Result.StatusMalformed() {
		return gatewayErr("API Mollie failed")
	}
	if resp.Result.ID == "" {
		return gatewayErr("No transaction id generated")
	}

	r.tx = models.TransactionData{
		OrderID:       r.orderID,
		TransactionID: resp.Result.ID,
		Hash:          r.hash.Hash,
		Amount:        resp.Result.Amount.DisplayAmount(),
		GatewayURL:    resp.Result.Links.Checkout.Href,
	}
	o.logger.Info("Transaction data", zap.Any("transaction_data", r.tx))
	return nil
}

func (o *Orchestrator) linkTransaction(ctx context.Context, r *run) error {
	code, err := o.api.LinkTransaction(ctx, r.tx)
	if err != nil {
		return transportErr(err)
	}
	if code != 200 {
		return linkageErr("'Payment is not linked to order")
	}
	return nil
}

// redirect is the only terminal success path. No compensation runs after it.
func (o *Orchestrator) redirect(ctx context.Context, r *run) error {
	comment := models.OrderComment{
		OrderID: r.orderID,
		Comment: "Payment is created at Mollie for amount " + r.tx.Amount,
		Status:  models.CommentStatusPending,
	}
	if err := o.api.PostOrderComment(ctx, comment); err != nil {
		o.logger.Warn("Order comment failed", zap.Error(err))
	}

	o.bus.Publish(bus.TopicProgressStart, "Redirecting you to payment gateway...")
	time.Sleep(o.cfg.RedirectDelay)

	o.logger.Info("Sending user to Mollie",
		zap.String("run_id", r.id),
		zap.String("url", r.tx.GatewayURL))
	o.nav.Push(r.tx.GatewayURL)
	o.bus.Publish(bus.TopicProgressStop, nil)

	o.update(r.id, map[string]interface{}{
		"state":          models.AttemptStatePending,
		"transaction_id": r.tx.TransactionID,
		"increment_id":   r.hash.IncrementID,
		"amount":         r.tx.Amount,
	})
	return nil
}

// compensate is identical at every failure point: stop the progress signal,
// notify the shopper, record a canceled comment, navigate to the fallback
// route. Earlier successful steps are not rolled back.
func (o *Orchestrator) compensate(ctx context.Context, r *run, failedAt State, stepErr error) {
	o.bus.Publish(bus.TopicProgressStop, nil)
	o.logger.Error("Payment saga failed",
		zap.String("run_id", r.id),
		zap.String("order_id", r.orderID),
		zap.String("failed_at", string(failedAt)),
		zap.Error(stepErr))

	o.bus.Publish(bus.TopicNotification, bus.Notification{
		Type:         "error",
		Message:      "Payment is not created - " + stepErr.Error(),
		HasNoTimeout: true,
	})

	comment := models.OrderComment{
		OrderID: r.orderID,
		Comment: "Payment could not be created: " + stepErr.Error(),
		Status:  models.CommentStatusCanceled,
	}
	if err := o.api.PostOrderComment(ctx, comment); err != nil {
		o.logger.Warn("Order comment failed", zap.Error(err))
	}

	o.nav.Push(o.cfg.ErrorURL)

	o.update(r.id, map[string]interface{}{
		"state":       models.AttemptStateCanceled,
		"fail_reason": stepErr.Error(),
	})
}

func (o *Orchestrator) record(r *run) {
	if o.journal == nil {
		return
	}
	attempt := &models.PaymentAttempt{
		RunID:   r.id,
		OrderID: r.orderID,
		Method:  o.session.Method(),
		State:   models.AttemptStateCreated,
	}
	if err := o.journal.Record(attempt); err != nil {
		o.logger.Warn("Attempt journal write failed", zap.Error(err))
	}
}

func (o *Orchestrator) update(runID string, updates map[string]interface{}) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Update(runID, updates); err != nil {
		o.logger.Warn("Attempt journal update failed", zap.Error(err))
	}
}
