package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/checkout"
	"github.com/Keoroanthony/go-storefront/internal/orders"
)

func orderURL(id uint) string {
	return fmt.Sprintf("/orders/%d", id)
}

// GET /orders/checkout
func (h *Handler) CheckoutPreview(c *gin.Context) {
	preview, err := h.Checkout.Preview(c.Request.Context(), cartID(c))
	if errors.Is(err, checkout.ErrEmptyCart) {
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// POST /orders/checkout
func (h *Handler) PlaceOrder(c *gin.Context) {
	var form checkout.CheckoutForm
	if !bind(c, &form) {
		return
	}

	customer := auth.CurrentCustomer(c)
	order, err := h.Checkout.PlaceOrder(c.Request.Context(), cartID(c), *customer, form)
	if errors.Is(err, checkout.ErrEmptyCart) {
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "order created successfully",
		"order":       order,
		"payment_url": checkout.PaymentURL(order.ID),
	})
}

// GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.Orders.List(c.Request.Context(), auth.CurrentCustomer(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GET /orders/:id
func (h *Handler) OrderDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), auth.CurrentCustomer(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"status_label":    order.Status.Label(),
		"tracking":        orders.Tracking(order.Status),
		"accepts_payment": orders.AcceptsPayment(order.Status),
	})
}

// GET /orders/:id/thank-you
func (h *Handler) ThankYou(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), auth.CurrentCustomer(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !orders.ThankYouAllowed(order.Status) {
		c.Redirect(http.StatusSeeOther, orderURL(order.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "thank you for your order", "order": order})
}
