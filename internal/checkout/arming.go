package checkout

import (
	"go.uber.org/zap"

	"molliebridge/internal/bus"
	"molliebridge/internal/models"
	"molliebridge/internal/registry"
)

// Subscription names. Arming always detaches and reattaches under the same
// names, so toggling between several Mollie methods never stacks listeners.
const (
	subMethodChanged = "mollie-arming"
	subOrderPlaced   = "mollie-order-placed"
	subPlaceOrder    = "mollie-place-order"
)

// SummaryView renders the payment summary for the selected gateway method.
type SummaryView interface {
	Mount(header, message string, method models.PaymentMethod)
}

// ArmingController attaches the orchestrator to the order-placed signal only
// while a Mollie method is the active checkout selection.
type ArmingController struct {
	bus      *bus.Bus
	registry *registry.Registry
	session  *Session
	saga     *Orchestrator
	summary  SummaryView
	logger   *zap.Logger
}

func NewArmingController(
	b *bus.Bus,
	reg *registry.Registry,
	session *Session,
	saga *Orchestrator,
	summary SummaryView,
	logger *zap.Logger,
) *ArmingController {
	return &ArmingController{
		bus:      b,
		registry: reg,
		session:  session,
		saga:     saga,
		summary:  summary,
		logger:   logger,
	}
}

// Attach subscribes the controller to method-change signals. Safe to call
// more than once.
func (a *ArmingController) Attach() {
	a.bus.Subscribe(bus.TopicPaymentMethodChanged, subMethodChanged, a.onMethodChanged)
}

func (a *ArmingController) onMethodChanged(payload interface{}) {
	change, ok := payload.(bus.PaymentMethodChanged)
	if !ok {
		return
	}

	a.session.ClearAdditional()
	if change.AdditionalData != nil {
		// Structured payload: inline additional data for the already selected
		// method, stored verbatim for the place-order pass-through.
		a.session.SetAdditional(change.AdditionalData)
		return
	}

	// Detach first. Several methods belong to this gateway family and a
	// second selection must not leave a duplicate order-placed listener.
	a.bus.Unsubscribe(bus.TopicOrderAfterPlaced, subOrderPlaced)
	a.bus.Unsubscribe(bus.TopicBeforePlaceOrder, subPlaceOrder)

	method, known := a.registry.Method(change.Code)
	if !known {
		a.session.setArmed(false)
		return
	}

	a.session.SetMethod(change.Code)
	a.session.setArmed(true)
	a.bus.Subscribe(bus.TopicOrderAfterPlaced, subOrderPlaced, a.saga.OnOrderPlaced)
	a.bus.Subscribe(bus.TopicBeforePlaceOrder, subPlaceOrder, a.onBeforePlaceOrder)

	if a.summary != nil {
		a.summary.Mount(
			"We use Mollie for secure payments",
			"After placing the order you will be send to Mollie and you can pay by:",
			method,
		)
	}
	a.logger.Info("Mollie orchestrator armed", zap.String("method", change.Code))
}

// onBeforePlaceOrder forwards the stored additional data to the place-order
// signal while armed.
func (a *ArmingController) onBeforePlaceOrder(interface{}) {
	if a.session.Armed() {
		a.bus.Publish(bus.TopicDoPlaceOrder, a.session.Additional())
	}
}
