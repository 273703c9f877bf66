package mollie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"molliebridge/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, zap.NewNop())
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestFetchOrderDetails(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/order-details" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["order_id"] != float64(12) {
			t.Errorf("expected numeric order_id, got %v", body["order_id"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"result": map[string]interface{}{
				"hash":         "abc",
				"increment_id": "100000123",
			},
		})
	})

	resp, err := client.FetchOrderDetails(context.Background(), "12")
	if err != nil {
		t.Fatalf("fetch order details: %v", err)
	}
	if resp.Code != 200 || resp.Result.Hash != "abc" || resp.Result.IncrementID != "100000123" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestFetchPaymentStatusSendsValidateFlag(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["validatePayment"] != true {
			t.Errorf("expected validatePayment=true, got %v", body["validatePayment"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"result": map[string]interface{}{
				"hash":           "abc",
				"transaction_id": "tr_WDqYK6vllg",
				"increment_id":   "100000123",
				"customer_email": "shopper@example.com",
			},
		})
	})

	resp, err := client.FetchPaymentStatus(context.Background(), "12")
	if err != nil {
		t.Fatalf("fetch payment status: %v", err)
	}
	if resp.Result.TransactionID != "tr_WDqYK6vllg" || resp.Result.CustomerEmail != "shopper@example.com" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestValidateHash(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/validate-hash" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		for _, key := range []string{"hash", "cart_total", "order_id", "increment_id"} {
			if _, ok := body[key]; !ok {
				t.Errorf("missing field %q in request", key)
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200})
	})

	code, err := client.ValidateHash(context.Background(), models.HashData{
		Hash:        "abc",
		CartTotal:   "99.90",
		OrderID:     "12",
		IncrementID: "100000123",
	})
	if err != nil {
		t.Fatalf("validate hash: %v", err)
	}
	if code != 200 {
		t.Errorf("expected code 200, got %d", code)
	}
}

func TestCreatePayment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/post-payment" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		amount, _ := body["amount"].(map[string]interface{})
		if amount["currency"] != "EUR" || amount["value"] != "99.90" {
			t.Errorf("unexpected amount %v", amount)
		}
		if _, ok := body["issuer"]; ok {
			t.Errorf("issuer must be omitted when empty")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"result": map[string]interface{}{
				"id":     "tr_WDqYK6vllg",
				"status": "open",
				"amount": map[string]interface{}{"currency": "EUR", "value": "99.90"},
				"_links": map[string]interface{}{
					"checkout": map[string]interface{}{"href": "https://www.mollie.com/checkout/select-method/WDqYK6vllg"},
				},
			},
		})
	})

	resp, err := client.CreatePayment(context.Background(), PaymentRequest{
		Amount:      Amount{Currency: "EUR", Value: "99.90"},
		OrderID:     "12",
		Hash:        "abc",
		Description: "Order # 100000123",
		RedirectURL: "https://shop.example/order-status/",
		Method:      "creditcard",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if resp.Result.ID != "tr_WDqYK6vllg" {
		t.Errorf("unexpected id %q", resp.Result.ID)
	}
	if resp.Result.StatusMalformed() {
		t.Errorf("string status must not be malformed")
	}
	if resp.Result.Links.Checkout.Href == "" {
		t.Errorf("expected checkout link parsed")
	}
}

func TestStatusMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"absent", "", false},
		{"string", `"open"`, false},
		{"number", `3`, true},
		{"object", `{}`, true},
		{"null", `null`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var result PaymentResult
			if tc.raw != "" {
				result.Status = json.RawMessage(tc.raw)
			}
			if got := result.StatusMalformed(); got != tc.want {
				t.Errorf("StatusMalformed(%s) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDisplayAmountReversesFieldOrder(t *testing.T) {
	a := Amount{Currency: "EUR", Value: "99.90"}
	if got := a.DisplayAmount(); got != "99.90 EUR" {
		t.Errorf("DisplayAmount() = %q, want %q", got, "99.90 EUR")
	}
}

func TestLinkTransaction(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/set-mollie-transaction-data" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		order, _ := body["order"].(map[string]interface{})
		if order["entity_id"] != float64(12) {
			t.Errorf("unexpected entity_id %v", order["entity_id"])
		}
		if body["mollie_transaction_id"] != "tr_WDqYK6vllg" {
			t.Errorf("unexpected transaction id %v", body["mollie_transaction_id"])
		}
		if body["mollie_secret_hash"] != "abc" {
			t.Errorf("unexpected hash %v", body["mollie_secret_hash"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200})
	})

	code, err := client.LinkTransaction(context.Background(), models.TransactionData{
		OrderID:       "12",
		TransactionID: "tr_WDqYK6vllg",
		Hash:          "abc",
	})
	if err != nil {
		t.Fatalf("link transaction: %v", err)
	}
	if code != 200 {
		t.Errorf("expected code 200, got %d", code)
	}
}

func TestPostOrderComment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order-comments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		commentWrap, _ := body["order_comment"].(map[string]interface{})
		history, _ := commentWrap["statusHistory"].(map[string]interface{})
		if history["comment"] != "Payment could not be created: Hashes don't match" {
			t.Errorf("unexpected comment %v", history["comment"])
		}
		if history["status"] != "canceled" {
			t.Errorf("unexpected status %v", history["status"])
		}
		if history["is_customer_notified"] != float64(0) || history["is_visible_on_front"] != float64(0) {
			t.Errorf("unexpected visibility flags: %v", history)
		}
		if history["parent_id"] != float64(12) {
			t.Errorf("unexpected parent_id %v", history["parent_id"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 200})
	})

	err := client.PostOrderComment(context.Background(), models.OrderComment{
		OrderID: "12",
		Comment: "Payment could not be created: Hashes don't match",
		Status:  models.CommentStatusCanceled,
	})
	if err != nil {
		t.Fatalf("post order comment: %v", err)
	}
}

func TestFetchMethods(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/payment-methods" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"_embedded": map[string]interface{}{
				"methods": []map[string]interface{}{
					{"id": "ideal", "description": "iDEAL"},
					{"id": "creditcard", "description": "Credit card"},
				},
			},
		})
	})

	catalog, err := client.FetchMethods(context.Background())
	if err != nil {
		t.Fatalf("fetch methods: %v", err)
	}
	if catalog.Count != 2 || len(catalog.Embedded.Methods) != 2 {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
	if catalog.Embedded.Methods[0].ID != "ideal" {
		t.Errorf("unexpected first method: %+v", catalog.Embedded.Methods[0])
	}
}

func TestFetchIdealIssuers(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/ideal-issuers" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issuers": []map[string]interface{}{
				{
					"id":    "ideal_ABNANL2A",
					"name":  "ABN AMRO",
					"image": map[string]interface{}{"size2x": "https://img.example/abn@2x.png"},
				},
			},
		})
	})

	issuers, err := client.FetchIdealIssuers(context.Background())
	if err != nil {
		t.Fatalf("fetch issuers: %v", err)
	}
	if len(issuers) != 1 || issuers[0].Image.Size2x != "https://img.example/abn@2x.png" {
		t.Errorf("unexpected issuers: %+v", issuers)
	}
}

func TestGetPayment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["id"] != "tr_WDqYK6vllg" {
			t.Errorf("unexpected id %v", body["id"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 200,
			"result": map[string]interface{}{
				"id":     "tr_WDqYK6vllg",
				"status": "paid",
				"amount": map[string]interface{}{"currency": "EUR", "value": "99.90"},
			},
		})
	})

	resp, err := client.GetPayment(context.Background(), "tr_WDqYK6vllg")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if resp.Result.Status != "paid" {
		t.Errorf("unexpected status %q", resp.Result.Status)
	}
}

func TestDecryptToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["token"] != "0:2:abcdef" {
			t.Errorf("unexpected token %v", body["token"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":   200,
			"result": map[string]interface{}{"order_id": "12", "hash": "abc"},
		})
	})

	resp, err := client.DecryptToken(context.Background(), "0:2:abcdef")
	if err != nil {
		t.Fatalf("decrypt token: %v", err)
	}
	if resp.Result.OrderID != "12" || resp.Result.Hash != "abc" {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}
