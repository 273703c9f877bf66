package models

// PaymentMethod is one enabled gateway payment method, built once from the
// gateway catalog and immutable afterwards.
type PaymentMethod struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Cost        float64 `json:"cost"`
	CostInclTax float64 `json:"cost_incl_tax"`
	Default     bool    `json:"default"`
	Offline     bool    `json:"offline"`
	Mollie      bool    `json:"mollieMethod"`
}

// Issuer is a sub-choice within an issuer-based method family (e.g. an iDEAL bank).
type Issuer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image"`
}

// HashData carries the shared secret between order lookup and hash validation.
// The hash must stay byte-identical across both steps.
type HashData struct {
	Hash        string `json:"hash"`
	CartTotal   string `json:"cart_total"`
	OrderID     string `json:"order_id"`
	IncrementID string `json:"increment_id"`
}

// TransactionData exists only after a successful payment creation.
// Amount is rebuilt from the gateway's own amount object, not from the request.
type TransactionData struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Hash          string `json:"hash"`
	Amount        string `json:"amount"`
	GatewayURL    string `json:"payment_gateway_url"`
}

// Order comment status tags written on the two terminal saga paths.
const (
	CommentStatusPending  = "pending_payment"
	CommentStatusCanceled = "canceled"
)

// OrderComment is a write-only audit record posted to the backend.
type OrderComment struct {
	OrderID string `json:"order_id"`
	Comment string `json:"order_comment"`
	Status  string `json:"status"`
}

// StatusOrder is the order summary embedded in a successful status result.
type StatusOrder struct {
	IncrementID   string `json:"increment_id"`
	CustomerEmail string `json:"customer_email"`
}

// PaymentStatusResult is the normalized output of status reconciliation.
type PaymentStatusResult struct {
	Status        int          `json:"status"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Order         *StatusOrder `json:"order,omitempty"`
	Msg           string       `json:"msg,omitempty"`
}
