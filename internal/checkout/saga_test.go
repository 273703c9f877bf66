package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"molliebridge/internal/bus"
	"molliebridge/internal/middleware"
	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
)

type fakeAPI struct {
	orderResp    *mollie.OrderDetailsResponse
	orderErr     error
	validateCode int
	validateErr  error
	createResp   *mollie.PaymentResponse
	createErr    error
	linkCode     int
	linkErr      error

	orderCalls  int
	createCalls int
	createReqs  []mollie.PaymentRequest
	comments    []models.OrderComment
}

func (f *fakeAPI) FetchOrderDetails(context.Context, string) (*mollie.OrderDetailsResponse, error) {
	f.orderCalls++
	return f.orderResp, f.orderErr
}

func (f *fakeAPI) ValidateHash(context.Context, models.HashData) (int, error) {
	return f.validateCode, f.validateErr
}

func (f *fakeAPI) CreatePayment(_ context.Context, req mollie.PaymentRequest) (*mollie.PaymentResponse, error) {
	f.createCalls++
	f.createReqs = append(f.createReqs, req)
	return f.createResp, f.createErr
}

func (f *fakeAPI) LinkTransaction(context.Context, models.TransactionData) (int, error) {
	return f.linkCode, f.linkErr
}

func (f *fakeAPI) PostOrderComment(_ context.Context, comment models.OrderComment) error {
	f.comments = append(f.comments, comment)
	return nil
}

type fakeNav struct {
	routes []string
}

func (n *fakeNav) Push(route string) {
	n.routes = append(n.routes, route)
}

type fakeCart struct {
	total float64
}

func (c *fakeCart) GrandTotal() float64 { return c.total }

// happyAPI returns a fake that walks the whole saga to the redirect.
func happyAPI() *fakeAPI {
	createResp := &mollie.PaymentResponse{Code: 200}
	createResp.Result.ID = "tr_WDqYK6vllg"
	createResp.Result.Status = json.RawMessage(`"open"`)
	createResp.Result.Amount = mollie.Amount{Currency: "EUR", Value: "99.90"}
	createResp.Result.Links.Checkout.Href = "https://www.mollie.com/checkout/select-method/WDqYK6vllg"

	return &fakeAPI{
		orderResp: &mollie.OrderDetailsResponse{
			Code:   200,
			Result: mollie.OrderDetails{Hash: "abc", IncrementID: "100000123"},
		},
		validateCode: 200,
		createResp:   createResp,
		linkCode:     200,
	}
}

type sagaFixture struct {
	api     *fakeAPI
	nav     *fakeNav
	bus     *bus.Bus
	session *Session
	saga    *Orchestrator
}

func newSagaFixture(t *testing.T, api *fakeAPI, total float64) *sagaFixture {
	t.Helper()

	b := bus.New()
	session := NewSession()
	session.SetMethod("ideal")
	session.SetAdditional(map[string]interface{}{"issuer": "ideal_ABNANL2A"})
	nav := &fakeNav{}

	guard, err := middleware.NewOrderGuard("", "", 0, time.Minute)
	if err != nil {
		t.Fatalf("order guard: %v", err)
	}

	saga := NewOrchestrator(
		api,
		&fakeCart{total: total},
		session,
		guard,
		nil,
		nav,
		b,
		Config{
			CurrencyCode: "EUR",
			ErrorURL:     "/cancelled",
			RedirectBase: "https://shop.example",
		},
		zap.NewNop(),
	)
	return &sagaFixture{api: api, nav: nav, bus: b, session: session, saga: saga}
}

func lastComment(t *testing.T, api *fakeAPI) models.OrderComment {
	t.Helper()
	if len(api.comments) == 0 {
		t.Fatalf("expected an order comment")
	}
	return api.comments[len(api.comments)-1]
}

func TestRunSuccessRedirectsToGateway(t *testing.T) {
	fx := newSagaFixture(t, happyAPI(), 99.9)

	tx, err := fx.saga.Run(context.Background(), "12")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(fx.api.createReqs) != 1 {
		t.Fatalf("expected 1 payment creation, got %d", fx.api.createCalls)
	}
	req := fx.api.createReqs[0]
	if req.Amount.Value != "99.90" {
		t.Errorf("expected amount 99.90, got %q", req.Amount.Value)
	}
	if req.Amount.Currency != "EUR" {
		t.Errorf("expected currency EUR, got %q", req.Amount.Currency)
	}
	if req.Description != "Order # 100000123" {
		t.Errorf("unexpected description %q", req.Description)
	}
	if req.RedirectURL != "https://shop.example/order-status/" {
		t.Errorf("unexpected redirect url %q", req.RedirectURL)
	}
	if req.Issuer != "ideal_ABNANL2A" {
		t.Errorf("expected issuer attached for ideal, got %q", req.Issuer)
	}

	if tx.TransactionID != "tr_WDqYK6vllg" {
		t.Errorf("unexpected transaction id %q", tx.TransactionID)
	}
	if tx.Amount != "99.90 EUR" {
		t.Errorf("expected amount rebuilt from gateway response, got %q", tx.Amount)
	}

	comment := lastComment(t, fx.api)
	if comment.Status != models.CommentStatusPending {
		t.Errorf("expected pending_payment comment, got %q", comment.Status)
	}
	if comment.Comment != "Payment is created at Mollie for amount 99.90 EUR" {
		t.Errorf("unexpected comment %q", comment.Comment)
	}

	if len(fx.nav.routes) != 1 || fx.nav.routes[0] != "https://www.mollie.com/checkout/select-method/WDqYK6vllg" {
		t.Errorf("expected navigation to gateway page, got %v", fx.nav.routes)
	}
}

func TestRunOrderLookupFailure(t *testing.T) {
	api := happyAPI()
	api.orderResp = &mollie.OrderDetailsResponse{Code: 500}
	fx := newSagaFixture(t, api, 99.9)

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "Could not fetch backend order details" {
		t.Fatalf("unexpected error: %v", err)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Kind != KindIntegrity {
		t.Errorf("expected integrity failure, got %#v", err)
	}
	if fx.api.createCalls != 0 {
		t.Errorf("payment creation must not run after a failed lookup")
	}
}

func TestRunHashMismatch(t *testing.T) {
	api := happyAPI()
	api.validateCode = 400
	fx := newSagaFixture(t, api, 99.9)

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "Hashes don't match" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunMissingTransactionID(t *testing.T) {
	api := happyAPI()
	createResp := &mollie.PaymentResponse{Code: 200}
	createResp.Result.Amount = mollie.Amount{Currency: "EUR"}
	api.createResp = createResp
	fx := newSagaFixture(t, api, 99.9)

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "No transaction id generated" {
		t.Fatalf("unexpected error: %v", err)
	}

	comment := lastComment(t, fx.api)
	if comment.Status != models.CommentStatusCanceled {
		t.Errorf("expected canceled comment, got %q", comment.Status)
	}
	if comment.Comment != "Payment could not be created: No transaction id generated" {
		t.Errorf("unexpected comment %q", comment.Comment)
	}
}

func TestRunMalformedStatus(t *testing.T) {
	api := happyAPI()
	api.createResp.Result.Status = json.RawMessage(`3`)

	fx := newSagaFixture(t, api, 99.9)
	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "API Mollie failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCreatePaymentBackendFailure(t *testing.T) {
	api := happyAPI()
	api.createResp.Code = 500

	fx := newSagaFixture(t, api, 99.9)
	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "API extension VS failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunLinkageFailureCompensates(t *testing.T) {
	api := happyAPI()
	api.linkCode = 500
	fx := newSagaFixture(t, api, 99.9)

	var notified []bus.Notification
	fx.bus.Subscribe(bus.TopicNotification, "test", func(payload interface{}) {
		if n, ok := payload.(bus.Notification); ok {
			notified = append(notified, n)
		}
	})

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "'Payment is not linked to order" {
		t.Fatalf("unexpected error: %v", err)
	}

	comment := lastComment(t, fx.api)
	if comment.Status != models.CommentStatusCanceled {
		t.Errorf("expected canceled comment, got %q", comment.Status)
	}

	if len(fx.nav.routes) != 1 || fx.nav.routes[0] != "/cancelled" {
		t.Errorf("expected navigation to fallback, got %v", fx.nav.routes)
	}

	if len(notified) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notified))
	}
	if notified[0].Message != "Payment is not created - 'Payment is not linked to order" {
		t.Errorf("unexpected notification %q", notified[0].Message)
	}
	if !notified[0].HasNoTimeout {
		t.Errorf("expected a blocking notification")
	}
}

func TestRunTransportFailureCompensates(t *testing.T) {
	api := happyAPI()
	api.orderResp = nil
	api.orderErr = errors.New("connection refused")
	fx := newSagaFixture(t, api, 99.9)

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil {
		t.Fatalf("expected error")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Kind != KindTransport {
		t.Errorf("expected transport failure, got %#v", err)
	}
	if len(fx.nav.routes) != 1 || fx.nav.routes[0] != "/cancelled" {
		t.Errorf("expected navigation to fallback, got %v", fx.nav.routes)
	}
}

func TestRunGuardRefusesSecondCreation(t *testing.T) {
	fx := newSagaFixture(t, happyAPI(), 99.9)

	if _, err := fx.saga.Run(context.Background(), "12"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	_, err := fx.saga.Run(context.Background(), "12")
	if err == nil || err.Error() != "Payment already requested for this order" {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.api.createCalls != 1 {
		t.Errorf("expected exactly 1 payment creation, got %d", fx.api.createCalls)
	}
}

func TestRunAmountReadLiveAtCreation(t *testing.T) {
	cart := &fakeCart{total: 42}
	api := happyAPI()

	b := bus.New()
	session := NewSession()
	session.SetMethod("creditcard")
	saga := NewOrchestrator(api, cart, session, nil, nil, &fakeNav{}, b,
		Config{CurrencyCode: "EUR", ErrorURL: "/"}, zap.NewNop())

	if _, err := saga.Run(context.Background(), "12"); err != nil {
		t.Fatalf("run: %v", err)
	}

	req := api.createReqs[0]
	if req.Amount.Value != "42.00" {
		t.Errorf("expected two fractional digits, got %q", req.Amount.Value)
	}
	if req.Issuer != "" {
		t.Errorf("issuer must only be set for ideal, got %q", req.Issuer)
	}
}
