package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"molliebridge/internal/bus"
	"molliebridge/internal/checkout"
	"molliebridge/internal/registry"
)

// CheckoutHandler is the storefront-facing signal facade: it translates HTTP
// calls from the SPA into bus signals and read models.
type CheckoutHandler struct {
	bus      *bus.Bus
	registry *registry.Registry
	shared   *registry.SharedMethods
	cart     *checkout.Cart
	session  *checkout.Session
	logger   *zap.Logger
}

func NewCheckoutHandler(
	b *bus.Bus,
	reg *registry.Registry,
	shared *registry.SharedMethods,
	cart *checkout.Cart,
	session *checkout.Session,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		bus:      b,
		registry: reg,
		shared:   shared,
		cart:     cart,
		session:  session,
		logger:   logger,
	}
}

// Methods implements GET /payment-methods: the gateway's enabled methods,
// the current issuer list and the shared cross-gateway list.
func (h *CheckoutHandler) Methods(c echo.Context) error {
	out := map[string]interface{}{
		"methods":         h.registry.Methods(),
		"issuers":         h.registry.Issuers(),
		"payment_methods": h.shared.Methods(),
	}
	if issuer, ok := h.registry.SelectedIssuer(); ok {
		out["issuer"] = issuer
	} else {
		out["issuer"] = nil
	}
	return c.JSON(http.StatusOK, out)
}

// SelectIssuer implements POST /checkout/issuer.
func (h *CheckoutHandler) SelectIssuer(c echo.Context) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	h.registry.SelectIssuer(body.ID)
	if issuer, ok := h.registry.SelectedIssuer(); ok {
		return c.JSON(http.StatusOK, issuer)
	}
	return c.JSON(http.StatusOK, nil)
}

// PaymentMethod implements POST /checkout/payment-method. A body with
// additional_data is treated as the structured pass-through payload; a body
// with code as a method selection.
func (h *CheckoutHandler) PaymentMethod(c echo.Context) error {
	var body struct {
		Code           string                 `json:"code"`
		AdditionalData map[string]interface{} `json:"additional_data"`
	}
	if err := c.Bind(&body); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	h.bus.Publish(bus.TopicPaymentMethodChanged, bus.PaymentMethodChanged{
		Code:           body.Code,
		AdditionalData: body.AdditionalData,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{"armed": h.session.Armed()})
}

// CartTotal implements POST /checkout/cart.
func (h *CheckoutHandler) CartTotal(c echo.Context) error {
	var body struct {
		GrandTotal float64 `json:"grand_total"`
	}
	if err := c.Bind(&body); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	h.cart.SetGrandTotal(body.GrandTotal)
	return c.NoContent(http.StatusNoContent)
}

// OrderPlaced implements POST /checkout/order-placed. Publishing the signal
// runs the armed saga synchronously before the response returns.
func (h *CheckoutHandler) OrderPlaced(c echo.Context) error {
	var body struct {
		OrderID   json.Number `json:"order_id"`
		CartTotal float64     `json:"cart_total"`
	}
	if err := c.Bind(&body); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if body.OrderID.String() == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	if body.CartTotal > 0 {
		h.cart.SetGrandTotal(body.CartTotal)
	}

	h.bus.Publish(bus.TopicBeforePlaceOrder, nil)
	h.bus.Publish(bus.TopicOrderAfterPlaced, bus.OrderPlaced{OrderID: body.OrderID.String()})

	return c.JSON(http.StatusOK, map[string]interface{}{"armed": h.session.Armed()})
}
