package mollie

import "encoding/json"

// Amount is the gateway money shape used in both directions. Field order
// matters for DisplayAmount and must match the request declaration.
type Amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// DisplayAmount joins the amount fields in reverse declared order, matching
// what the backend historically stored ("99.90 EUR").
func (a Amount) DisplayAmount() string {
	return a.Value + " " + a.Currency
}

// MethodInfo is one entry of the gateway method catalog.
type MethodInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// MethodCatalog is the /payment-methods response.
type MethodCatalog struct {
	Count    int `json:"count"`
	Embedded struct {
		Methods []MethodInfo `json:"methods"`
	} `json:"_embedded"`
}

// IssuerEntry is one entry of the /ideal-issuers response.
type IssuerEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image struct {
		Size2x string `json:"size2x"`
	} `json:"image"`
}

type issuerCatalog struct {
	Issuers []IssuerEntry `json:"issuers"`
}

// OrderDetails is the result object of an order lookup. The validated lookup
// additionally fills TransactionID and CustomerEmail.
type OrderDetails struct {
	Hash          string `json:"hash"`
	IncrementID   string `json:"increment_id"`
	TransactionID string `json:"transaction_id"`
	CustomerEmail string `json:"customer_email"`
}

// OrderDetailsResponse is the enveloped order-lookup response.
type OrderDetailsResponse struct {
	Code   int          `json:"code"`
	Result OrderDetails `json:"result"`
}

// PaymentRequest is the payment-creation body. Amount reads the live cart
// grand total at construction time.
type PaymentRequest struct {
	Amount      Amount `json:"amount"`
	OrderID     string `json:"order_id"`
	Hash        string `json:"hash"`
	Description string `json:"description"`
	RedirectURL string `json:"redirectUrl"`
	Method      string `json:"method"`
	Issuer      string `json:"issuer,omitempty"`
}

// PaymentResult is the gateway transaction object. Status stays raw so the
// orchestrator can tell a missing field from a malformed one.
type PaymentResult struct {
	ID     string          `json:"id"`
	Status json.RawMessage `json:"status"`
	Amount Amount          `json:"amount"`
	Links  struct {
		Checkout struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
}

// StatusMalformed reports whether the gateway echoed a status field that is
// not a JSON string. An absent status is fine.
func (r PaymentResult) StatusMalformed() bool {
	raw := r.Status
	return len(raw) > 0 && raw[0] != '"'
}

// PaymentResponse is the enveloped payment-creation response.
type PaymentResponse struct {
	Code   int           `json:"code"`
	Result PaymentResult `json:"result"`
}

// PaymentLookup is the raw gateway payment object returned by /get-payment,
// reduced to the fields reconciliation cares about.
type PaymentLookup struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount Amount `json:"amount"`
}

// PaymentLookupResponse is the enveloped /get-payment response.
type PaymentLookupResponse struct {
	Code   int           `json:"code"`
	Result PaymentLookup `json:"result"`
}

// DecryptedToken is the /decrypt-token result: the order reference carried by
// the order-status URL.
type DecryptedToken struct {
	OrderID string `json:"order_id"`
	Hash    string `json:"hash"`
}

// DecryptTokenResponse is the enveloped /decrypt-token response.
type DecryptTokenResponse struct {
	Code   int            `json:"code"`
	Result DecryptedToken `json:"result"`
}

type ackResponse struct {
	Code int `json:"code"`
}
