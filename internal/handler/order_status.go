package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"molliebridge/internal/checkout"
	"molliebridge/internal/models"
	"molliebridge/internal/mollie"
)

// StatusClient is the slice of the gateway client the order-status route needs.
type StatusClient interface {
	checkout.StatusAPI
	DecryptToken(ctx context.Context, token string) (*mollie.DecryptTokenResponse, error)
}

// OrderStatusHandler serves the order-confirmation view: it resolves the
// order token and reconciles the payment status.
type OrderStatusHandler struct {
	api    StatusClient
	logger *zap.Logger
}

func NewOrderStatusHandler(api StatusClient, logger *zap.Logger) *OrderStatusHandler {
	return &OrderStatusHandler{api: api, logger: logger}
}

// Handle implements GET /order-status/:order_token.
func (h *OrderStatusHandler) Handle(c echo.Context) error {
	token := c.Param("order_token")
	ctx := c.Request().Context()

	resp, err := h.api.DecryptToken(ctx, token)
	if err != nil || resp.Code != 200 {
		if err != nil {
			h.logger.Error("Token decrypt failed", zap.Error(err))
		}
		return c.JSON(http.StatusBadRequest, models.PaymentStatusResult{
			Status: 400,
			Msg:    "Backend API call has failed",
		})
	}

	result := checkout.ReconcilePaymentStatus(ctx, h.api, resp.Result.OrderID, resp.Result.Hash)
	return c.JSON(result.Status, result)
}
