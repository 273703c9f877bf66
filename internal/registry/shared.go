package registry

import (
	"sync"

	"molliebridge/internal/models"
)

// SharedMethods is the cross-gateway payment-methods list exposed to the
// checkout UI. Each gateway replaces its own batch, keyed by source.
type SharedMethods struct {
	mu      sync.RWMutex
	batches map[string][]models.PaymentMethod
	order   []string
}

func NewSharedMethods() *SharedMethods {
	return &SharedMethods{batches: make(map[string][]models.PaymentMethod)}
}

// ReplaceMethods swaps the batch contributed by source.
func (s *SharedMethods) ReplaceMethods(source string, methods []models.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[source]; !ok {
		s.order = append(s.order, source)
	}
	s.batches[source] = methods
}

// Methods returns all gateways' methods in contribution order.
func (s *SharedMethods) Methods() []models.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PaymentMethod
	for _, source := range s.order {
		out = append(out, s.batches[source]...)
	}
	return out
}
