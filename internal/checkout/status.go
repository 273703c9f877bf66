package checkout

import (
	"context"

	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
)

// StatusAPI is the slice of the gateway client status reconciliation needs.
type StatusAPI interface {
	FetchPaymentStatus(ctx context.Context, orderID string) (*mollie.OrderDetailsResponse, error)
}

// ReconcilePaymentStatus re-validates an order hash and returns the
// normalized payment status used by the order-confirmation view. The
// caller-supplied hash must match the backend's re-derived hash byte for
// byte; anything else is a hard integrity failure.
func ReconcilePaymentStatus(ctx context.Context, api StatusAPI, orderID, hash string) models.PaymentStatusResult {
	resp, err := api.FetchPaymentStatus(ctx, orderID)
	if err != nil || resp.Code != 200 {
		return models.PaymentStatusResult{Status: 400, Msg: "Backend API call has failed"}
	}

	if resp.Result.Hash != hash {
		return models.PaymentStatusResult{Status: 400, Msg: "Hash is incorrect"}
	}

	return models.PaymentStatusResult{
		Status:        200,
		TransactionID: resp.Result.TransactionID,
		Order: &models.StatusOrder{
			IncrementID:   resp.Result.IncrementID,
			CustomerEmail: resp.Result.CustomerEmail,
		},
	}
}
