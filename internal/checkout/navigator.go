package checkout

import (
	"go.uber.org/zap"

	"molliebridge/internal/bus"
	"molliebridge/internal/models"
)

// SignalNavigator publishes navigation intents on the bus for the storefront
// shell to act on.
type SignalNavigator struct {
	bus    *bus.Bus
	logger *zap.Logger
}

func NewSignalNavigator(b *bus.Bus, logger *zap.Logger) *SignalNavigator {
	return &SignalNavigator{bus: b, logger: logger}
}

func (n *SignalNavigator) Push(route string) {
	n.logger.Info("Navigating", zap.String("route", route))
	n.bus.Publish(bus.TopicNavigate, route)
}

// LogSummary is the headless payment-summary view: it logs what the
// storefront would render.
type LogSummary struct {
	Logger *zap.Logger
}

func (s *LogSummary) Mount(header, message string, method models.PaymentMethod) {
	s.Logger.Info("Payment summary mounted",
		zap.String("header", header),
		zap.String("message", message),
		zap.String("method", method.Code),
		zap.String("title", method.Title))
}
