package mollie

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"molliebridge/internal/models"
	"molliebridge/internal/pkg/httpclient"
)

// Client is a stateless wrapper around the merchant backend's Mollie bridge
// endpoints. One method per backend capability; no client-side retry.
type Client struct {
	endpoint string
	http     *httpclient.Client
	logger   *zap.Logger
}

// NewClient creates a gateway client for the configured endpoint base URL.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     httpclient.New(),
		logger:   logger,
	}
}

// FetchMethods retrieves the gateway's payment method catalog.
func (c *Client) FetchMethods(ctx context.Context) (*MethodCatalog, error) {
	body, err := c.http.Get(ctx, c.endpoint+"/payment-methods")
	if err != nil {
		return nil, fmt.Errorf("mollie fetch methods failed: %w", err)
	}

	var catalog MethodCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("mollie methods parse error: %w", err)
	}
	return &catalog, nil
}

// FetchIdealIssuers retrieves the iDEAL issuer catalog. An empty catalog is
// not an error; the caller replaces its issuer list either way.
func (c *Client) FetchIdealIssuers(ctx context.Context) ([]IssuerEntry, error) {
	body, err := c.http.Get(ctx, c.endpoint+"/ideal-issuers")
	if err != nil {
		return nil, fmt.Errorf("mollie fetch issuers failed: %w", err)
	}

	var catalog issuerCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("mollie issuers parse error: %w", err)
	}
	return catalog.Issuers, nil
}

// FetchOrderDetails looks up hash and increment id for a backend order.
func (c *Client) FetchOrderDetails(ctx context.Context, orderID string) (*OrderDetailsResponse, error) {
	params := map[string]interface{}{"order_id": orderIDParam(orderID)}

	body, err := c.http.Post(ctx, c.endpoint+"/order-details", params)
	if err != nil {
		return nil, fmt.Errorf("mollie order details failed: %w", err)
	}

	var resp OrderDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mollie order details parse error: %w", err)
	}
	return &resp, nil
}

// FetchPaymentStatus is the validated order lookup used by status
// reconciliation: the backend re-derives the hash and includes transaction id
// and customer email.
func (c *Client) FetchPaymentStatus(ctx context.Context, orderID string) (*OrderDetailsResponse, error) {
	params := map[string]interface{}{
		"order_id":        orderIDParam(orderID),
		"validatePayment": true,
	}

	body, err := c.http.Post(ctx, c.endpoint+"/order-details", params)
	if err != nil {
		return nil, fmt.Errorf("mollie payment status failed: %w", err)
	}

	var resp OrderDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mollie payment status parse error: %w", err)
	}
	return &resp, nil
}

// ValidateHash asks the backend to re-derive and compare the order hash.
// Returns the backend application code; 200 means the hashes match.
func (c *Client) ValidateHash(ctx context.Context, data models.HashData) (int, error) {
	body, err := c.http.Post(ctx, c.endpoint+"/validate-hash", data)
	if err != nil {
		return 0, fmt.Errorf("mollie validate hash failed: %w", err)
	}

	var resp ackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("mollie validate hash parse error: %w", err)
	}
	return resp.Code, nil
}

// CreatePayment requests a payment transaction from the gateway.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	body, err := c.http.Post(ctx, c.endpoint+"/post-payment", req)
	if err != nil {
		return nil, fmt.Errorf("mollie create payment failed: %w", err)
	}

	var resp PaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mollie create payment parse error: %w", err)
	}
	return &resp, nil
}

// LinkTransaction persists the transaction id and secret hash on the backend
// order. Returns the backend application code.
func (c *Client) LinkTransaction(ctx context.Context, data models.TransactionData) (int, error) {
	params := map[string]interface{}{
		"order": map[string]interface{}{
			"entity_id": orderIDParam(data.OrderID),
		},
		"mollie_transaction_id": data.TransactionID,
		"mollie_secret_hash":    data.Hash,
	}

	body, err := c.http.Post(ctx, c.endpoint+"/set-mollie-transaction-data", params)
	if err != nil {
		return 0, fmt.Errorf("mollie link transaction failed: %w", err)
	}

	var resp ackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("mollie link transaction parse error: %w", err)
	}
	return resp.Code, nil
}

// PostOrderComment records an audit comment on the backend order. Fire and
// forget: a failed comment never fails the caller.
func (c *Client) PostOrderComment(ctx context.Context, comment models.OrderComment) error {
	params := map[string]interface{}{
		"order_id": orderIDParam(comment.OrderID),
		"order_comment": map[string]interface{}{
			"statusHistory": map[string]interface{}{
				"comment":              comment.Comment,
				"created_at":           time.Now().Format(time.RFC3339),
				"is_customer_notified": 0,
				"is_visible_on_front":  0,
				"parent_id":            orderIDParam(comment.OrderID),
				"status":               comment.Status,
			},
		},
	}

	if _, err := c.http.Post(ctx, c.endpoint+"/order-comments", params); err != nil {
		return fmt.Errorf("mollie order comment failed: %w", err)
	}
	return nil
}

// GetPayment fetches the raw gateway payment object by transaction id.
func (c *Client) GetPayment(ctx context.Context, id string) (*PaymentLookupResponse, error) {
	body, err := c.http.Post(ctx, c.endpoint+"/get-payment", map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("mollie get payment failed: %w", err)
	}

	var resp PaymentLookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mollie get payment parse error: %w", err)
	}
	return &resp, nil
}

// DecryptToken resolves an order-status token into the backend order id and
// secret hash.
func (c *Client) DecryptToken(ctx context.Context, token string) (*DecryptTokenResponse, error) {
	body, err := c.http.Post(ctx, c.endpoint+"/decrypt-token", map[string]interface{}{"token": token})
	if err != nil {
		return nil, fmt.Errorf("mollie decrypt token failed: %w", err)
	}

	var resp DecryptTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mollie decrypt token parse error: %w", err)
	}
	return &resp, nil
}

// orderIDParam sends numeric backend order ids as numbers, the way the
// storefront always has.
func orderIDParam(orderID string) interface{} {
	if n, err := strconv.Atoi(orderID); err == nil {
		return n
	}
	return orderID
}
