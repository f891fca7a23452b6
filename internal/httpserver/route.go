package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/models"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	CartHandler       *CartHTTP
	OrderHandler      *OrderHTTP
	PaymentHandler    *PaymentHTTP
	EarningHandler    *EarningHTTP
	WithdrawalHandler *WithdrawalHTTP

	JWTSecret []byte

	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/payments/webhook", d.PaymentHandler.Webhook)

	authMW := middleware.NewJWTAuth(d.JWTSecret)
	authed := api.Group("", authMW.RequireAuth)

	authed.GET("/cart", d.CartHandler.GetCart)
	authed.POST("/cart/items", d.CartHandler.AddItem)
	authed.DELETE("/cart/items/:id", d.CartHandler.RemoveItem)
	authed.DELETE("/cart", d.CartHandler.Clear)
	authed.POST("/checkout", d.CartHandler.CheckoutCart)

	authed.GET("/orders", d.OrderHandler.ListOrders)
	authed.GET("/orders/:id", d.OrderHandler.GetOrder)
	authed.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	authed.POST("/orders/:id/payment", d.PaymentHandler.InitializeOrder)
	authed.POST("/checkouts/:ref/payment", d.PaymentHandler.InitializeCheckout)

	vendor := authed.Group("/vendor", middleware.RequireRole(string(models.RoleVendor)))
	vendor.GET("/earnings", d.EarningHandler.Mine)
	vendor.POST("/withdrawals", d.WithdrawalHandler.Create)
	vendor.GET("/withdrawals", d.WithdrawalHandler.List)

	admin := authed.Group("/admin", middleware.RequireRole(string(models.RoleAdmin)))
	admin.GET("/earnings/:vendor_id", d.EarningHandler.ForVendor)
	admin.GET("/withdrawals", d.WithdrawalHandler.List)
	admin.POST("/withdrawals/:id/approve", d.WithdrawalHandler.Approve)
	admin.POST("/withdrawals/:id/reject", d.WithdrawalHandler.Reject)
	admin.POST("/withdrawals/:id/paid", d.WithdrawalHandler.MarkPaid)
}
