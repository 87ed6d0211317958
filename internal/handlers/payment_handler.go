package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/payments"
)

// GET /payments/manual/:order_id
func (h *Handler) ManualPaymentPage(c *gin.Context) {
	orderID, ok := idParam(c, "order_id")
	if !ok {
		return
	}

	page, err := h.Payments.ManualPaymentPage(c.Request.Context(), auth.CurrentCustomer(c).ID, orderID)
	if errors.Is(err, payments.ErrPaymentClosed) {
		c.Redirect(http.StatusSeeOther, orderURL(orderID))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if page.Method != nil && page.Method.QRImage != "" {
		page.Method.QRImage = h.Media.PublicURL(page.Method.QRImage)
	}
	c.JSON(http.StatusOK, page)
}

// POST /payments/manual/:order_id
func (h *Handler) SubmitManualPayment(c *gin.Context) {
	orderID, ok := idParam(c, "order_id")
	if !ok {
		return
	}

	sub := payments.Submission{Reference: c.PostForm("manual_reference")}
	if err := sub.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if fh, err := c.FormFile("manual_proof"); err == nil {
		rel, err := h.Media.SaveImage(fh, "payment_proofs")
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"manual_proof": "Upload a valid image."}})
			return
		}
		sub.ProofPath = rel
	}

	payment, err := h.Payments.SubmitManualPayment(c.Request.Context(), auth.CurrentCustomer(c).ID, orderID, sub)
	if err != nil && sub.ProofPath != "" {
		if rmErr := h.Media.Remove(sub.ProofPath); rmErr != nil {
			log.Printf("remove unused proof %s: %v", sub.ProofPath, rmErr)
		}
	}
	if errors.Is(err, payments.ErrPaymentClosed) {
		c.Redirect(http.StatusSeeOther, orderURL(orderID))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment submitted", "payment": payment, "order_url": orderURL(orderID)})
}
