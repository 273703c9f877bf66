package checkout

// FailureKind classifies why a saga step failed. Every kind funnels into the
// same compensation sequence; the kind exists so callers and tests can tell
// a transport drop from a hash mismatch.
type FailureKind int

const (
	KindTransport FailureKind = iota
	KindBackendLogic
	KindIntegrity
	KindGatewayProtocol
	KindLinkage
)

// StepError is the failure of one saga step. Message is what the shopper
// sees, embedded in the notification and the canceled order comment.
type StepError struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *StepError) Error() string {
	return e.Message
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

func transportErr(cause error) *StepError {
	return &StepError{Kind: KindTransport, Message: cause.Error(), Cause: cause}
}

func backendErr(msg string) *StepError {
	return &StepError{Kind: KindBackendLogic, Message: msg}
}

func integrityErr(msg string) *StepError {
	return &StepError{Kind: KindIntegrity, Message: msg}
}

func gatewayErr(msg string) *StepError {
	return &StepError{Kind: KindGatewayProtocol, Message: msg}
}

func linkageErr(msg string) *StepError {
	return &StepError{Kind: KindLinkage, Message: msg}
}
