package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"molliebridge/internal/handler"
	"molliebridge/internal/middleware"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	orderStatus *handler.OrderStatusHandler,
	checkout *handler.CheckoutHandler,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Order confirmation entry point
	e.GET("/order-status/:order_token", orderStatus.Handle)

	// Read models
	e.GET("/payment-methods", checkout.Methods)

	// Checkout signal facade
	checkoutGroup := e.Group("/checkout")
	checkoutGroup.POST("/payment-method", checkout.PaymentMethod)
	checkoutGroup.POST("/issuer", checkout.SelectIssuer)
	checkoutGroup.POST("/cart", checkout.CartTotal)
	checkoutGroup.POST("/order-placed", checkout.OrderPlaced)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
