package checkout

import "sync"

// Session is the per-checkout-session context shared between the arming
// controller and the orchestrator: the selected method, whether the
// orchestrator is armed for it, and any inline additional data the
// storefront passed with the method selection.
type Session struct {
	mu         sync.RWMutex
	method     string
	armed      bool
	additional map[string]interface{}
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) SetMethod(code string) {
	s.mu.Lock()
	s.method = code
	s.mu.Unlock()
}

func (s *Session) Method() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}

func (s *Session) setArmed(armed bool) {
	s.mu.Lock()
	s.armed = armed
	s.mu.Unlock()
}

// Armed reports whether the orchestrator is attached for the current method.
func (s *Session) Armed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.armed
}

// SetAdditional stores a structured method payload verbatim for pass-through.
func (s *Session) SetAdditional(data map[string]interface{}) {
	s.mu.Lock()
	s.additional = data
	s.mu.Unlock()
}

func (s *Session) ClearAdditional() {
	s.mu.Lock()
	s.additional = map[string]interface{}{}
	s.mu.Unlock()
}

// Additional returns the stored pass-through payload.
func (s *Session) Additional() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.additional
}

// Issuer reads the selected issuer id out of the pass-through payload.
func (s *Session) Issuer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.additional["issuer"].(string); ok {
		return id
	}
	return ""
}
