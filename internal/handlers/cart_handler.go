package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/cart"
)

func (h *Handler) renderCart(c *gin.Context, status int) {
	ctx := c.Request.Context()
	sid := cartID(c)

	summary, err := h.Cart.Items(ctx, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.Cart.Count(ctx, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"items": summary.Items, "subtotal": summary.Subtotal, "count": count})
}

// GET /cart
func (h *Handler) ViewCart(c *gin.Context) {
	h.renderCart(c, http.StatusOK)
}

// POST /cart/add/:product_id
func (h *Handler) AddToCart(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	sizeID := cart.ParseSizeInput(c.PostForm("size_id"))
	qty := cart.ParseQuantityInput(c.PostForm("quantity"))
	if err := h.Cart.Add(c.Request.Context(), cartID(c), productID, sizeID, qty); err != nil {
		respondError(c, err)
		return
	}
	h.renderCart(c, http.StatusOK)
}

// POST /cart/set/:item_key
func (h *Handler) SetCartQuantity(c *gin.Context) {
	qty := cart.ParseQuantityInput(c.PostForm("quantity"))
	if err := h.Cart.SetQuantity(c.Request.Context(), cartID(c), c.Param("item_key"), qty); err != nil {
		respondError(c, err)
		return
	}
	h.renderCart(c, http.StatusOK)
}

// POST /cart/remove/:item_key
func (h *Handler) RemoveFromCart(c *gin.Context) {
	if err := h.Cart.Remove(c.Request.Context(), cartID(c), c.Param("item_key")); err != nil {
		respondError(c, err)
		return
	}
	h.renderCart(c, http.StatusOK)
}

// POST /cart/clear
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), cartID(c)); err != nil {
		respondError(c, err)
		return
	}
	h.renderCart(c, http.StatusOK)
}
