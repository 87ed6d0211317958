package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-storefront/internal/auth"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/orders"
	"github.com/Keoroanthony/go-storefront/internal/payments"
)

var staffEvents = map[orders.Event]bool{
	orders.MarkReadyToGo:      true,
	orders.MarkShipped:        true,
	orders.MarkOutForDelivery: true,
	orders.MarkArrived:        true,
	orders.MarkDelivered:      true,
	orders.Cancel:             true,
}

var paymentActions = map[string]models.PaymentStatus{
	"verify": models.PaymentStatusVerified,
	"fail":   models.PaymentStatusFailed,
}

type BulkRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required,min=1"`
	Action   string `json:"action" binding:"required"`
}

func staffID(c *gin.Context) string {
	return strconv.FormatUint(uint64(auth.CurrentCustomer(c).ID), 10)
}

func staffFilter(c *gin.Context) orders.StaffFilter {
	return orders.StaffFilter{
		Status: models.OrderStatus(strings.ToUpper(c.Query("status"))),
		Search: c.Query("q"),
	}
}

// GET /admin/orders?status=&q=
func (h *Handler) AdminListOrders(c *gin.Context) {
	list, err := h.Orders.StaffList(c.Request.Context(), staffFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// POST /admin/orders/status
func (h *Handler) BulkOrderStatus(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_ids and action required"})
		return
	}
	ev := orders.Event(req.Action)
	if !staffEvents[ev] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	result, err := h.Orders.Apply(c.Request.Context(), req.OrderIDs, ev, staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /admin/orders/payments
func (h *Handler) BulkPaymentStatus(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_ids and action required"})
		return
	}
	status, ok := paymentActions[req.Action]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	result, err := h.Payments.BulkSetStatus(c.Request.Context(), req.OrderIDs, status, staffID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /admin/orders/export
func (h *Handler) ExportOrders(c *gin.Context) {
	list, err := h.Orders.StaffList(c.Request.Context(), staffFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := orders.WriteXLSX(&buf, list); err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// GET /admin/payment-methods
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.Payments.ListMethods(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

// POST /admin/payment-methods, JSON or multipart with an optional qr_image.
func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var form payments.MethodForm
	if !bind(c, &form) {
		return
	}
	if fh, err := c.FormFile("qr_image"); err == nil {
		rel, err := h.Media.SaveImage(fh, "payment_qr")
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"qr_image": "Upload a valid image."}})
			return
		}
		form.QRImage = rel
	}

	method, err := h.Payments.CreateMethod(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

// PATCH /admin/payment-methods/:id
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var update payments.MethodUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	method, err := h.Payments.UpdateMethod(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

// GET /admin/payments?status=&q=
func (h *Handler) AdminListPayments(c *gin.Context) {
	filter := payments.PaymentFilter{
		Status: models.PaymentStatus(strings.ToUpper(c.Query("status"))),
		Search: c.Query("q"),
	}
	list, err := h.Payments.StaffList(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

type PaymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /admin/payments/:id
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"status": "Select a valid choice."}})
		return
	}

	ctx := c.Request.Context()
	payment, err := h.Payments.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Payments.SetStatus(ctx, &payment, status, staffID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GET /admin/payments/:id
func (h *Handler) AdminPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.Payments.Get(c.Request.Context(), id)
	if errors.Is(err, payments.ErrPaymentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if payment.ManualProof != "" {
		payment.ManualProof = h.Media.PublicURL(payment.ManualProof)
	}
	c.JSON(http.StatusOK, payment)
}

// GET /admin/live
func (h *Handler) LiveFeed(c *gin.Context) {
	h.Live.Handler(c)
}
