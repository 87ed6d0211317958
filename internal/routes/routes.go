// Package routes wires the HTTP surface.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/handlers"
)

// SetupRoutes expects the session middleware to be installed on r already.
func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	r.Use(handlers.CartSession())

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/login", auth.Login)
		authGroup.GET("/callback", auth.Callback)
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.PasswordLogin)
		authGroup.POST("/logout", auth.Logout)
	}

	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:slug/products", h.ListProducts)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:slug", h.ProductDetail)
	r.POST("/products/:slug/reviews", h.CreateReview)

	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", h.ViewCart)
		cartGroup.POST("/add/:product_id", h.AddToCart)
		cartGroup.POST("/set/:item_key", h.SetCartQuantity)
		cartGroup.POST("/remove/:item_key", h.RemoveFromCart)
		cartGroup.POST("/clear", h.ClearCart)
	}

	r.POST("/contact", h.Contact)

	// ── customer endpoints ──
	customer := r.Group("")
	customer.Use(auth.RequireAuth())
	{
		customer.GET("/orders/checkout", h.CheckoutPreview)
		customer.POST("/orders/checkout", h.PlaceOrder)
		customer.GET("/orders", h.ListOrders)
		customer.GET("/orders/:id", h.OrderDetail)
		customer.GET("/orders/:id/thank-you", h.ThankYou)
		customer.GET("/payments/manual/:order_id", h.ManualPaymentPage)
		customer.POST("/payments/manual/:order_id", h.SubmitManualPayment)
	}

	// ── staff endpoints ──
	admin := r.Group("/admin")
	admin.Use(auth.RequireAuth(), auth.RequireStaff())
	{
		admin.POST("/categories", h.CreateCategory)
		admin.PATCH("/categories/:id", h.SetCategoryActive)
		admin.DELETE("/categories/:id", h.DeleteCategory)
		admin.GET("/categories/:id/price-stats", h.CategoryPriceStats)

		admin.POST("/products", h.CreateProduct)
		admin.PATCH("/products/:id", h.SetProductActive)
		admin.POST("/products/:id/images", h.UploadProductImage)
		admin.POST("/products/:id/sizes", h.AddSize)
		admin.PATCH("/sizes/:id", h.SetSizeActive)
		admin.PATCH("/reviews/:id", h.SetReviewActive)

		admin.GET("/payment-methods", h.ListPaymentMethods)
		admin.POST("/payment-methods", h.CreatePaymentMethod)
		admin.PATCH("/payment-methods/:id", h.UpdatePaymentMethod)
		admin.GET("/payments", h.AdminListPayments)
		admin.GET("/payments/:id", h.AdminPayment)
		admin.PATCH("/payments/:id", h.UpdatePaymentStatus)

		admin.GET("/orders", h.AdminListOrders)
		admin.GET("/orders/export", h.ExportOrders)
		admin.POST("/orders/status", h.BulkOrderStatus)
		admin.POST("/orders/payments", h.BulkPaymentStatus)

		admin.GET("/live", h.LiveFeed)
	}
}
