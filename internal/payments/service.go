// Package payments handles manual (UPI / bank transfer) payment intake and
// staff verification.
package payments

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/orders"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

var (
	ErrPaymentClosed   = errors.New("order is not accepting payments")
	ErrPaymentNotFound = errors.New("payment not found")
)

const maxReferenceLen = 120

type Service struct {
	DB        *gorm.DB
	Events    *events.Emitter
	PayeeName string
}

func NewService(conn *gorm.DB, bus *events.Emitter, payeeName string) *Service {
	return &Service{DB: conn, Events: bus, PayeeName: payeeName}
}

// Page is what a shopper needs to pay for an order offline.
type Page struct {
	Order     models.Order          `json:"order"`
	Method    *models.PaymentMethod `json:"payment_method"`
	Payment   *models.Payment       `json:"payment"`
	UPIURI    string                `json:"upi_uri,omitempty"`
	QRDataURI string                `json:"qr_data_uri,omitempty"`
}

// UPIURI builds a upi://pay deep link.
func UPIURI(upiID, payee, amount, note string) string {
	params := url.Values{}
	params.Set("pa", upiID)
	params.Set("pn", payee)
	params.Set("am", amount)
	params.Set("tn", note)
	params.Set("cu", "INR")
	return "upi://pay?" + params.Encode()
}

func qrDataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (s *Service) customerOrder(ctx context.Context, tx *gorm.DB, customerID, orderID uint) (models.Order, error) {
	var order models.Order
	err := tx.WithContext(ctx).
		Preload("ManualPaymentMethod").
		Preload("Payment").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, orders.ErrOrderNotFound
	}
	return order, err
}

// ManualPaymentPage loads the payment instructions for an order still
// waiting on payment. QR methods with a UPI id also get a scannable link.
func (s *Service) ManualPaymentPage(ctx context.Context, customerID, orderID uint) (Page, error) {
	order, err := s.customerOrder(ctx, s.DB, customerID, orderID)
	if err != nil {
		return Page{}, err
	}
	if order.PaymentMethod != models.PaymentMethodManual || !orders.AcceptsPayment(order.Status) {
		return Page{Order: order}, ErrPaymentClosed
	}

	page := Page{Order: order, Method: order.ManualPaymentMethod, Payment: order.Payment}
	if m := order.ManualPaymentMethod; m != nil && m.MethodType == models.PaymentMethodQR && m.UPIID != "" {
		page.UPIURI = UPIURI(m.UPIID, s.PayeeName, order.Total.StringFixed(2), fmt.Sprintf("Order #%d", order.ID))
		if page.QRDataURI, err = qrDataURI(page.UPIURI); err != nil {
			log.Printf("order %s: qr encode failed: %v", order.OrderCode, err)
			page.QRDataURI = ""
		}
	}
	return page, nil
}

type Submission struct {
	Reference string `form:"manual_reference" json:"manual_reference"`
	ProofPath string `form:"-" json:"-"`
}

// Validate trims the reference and checks it is present and short enough.
func (sub *Submission) Validate() error {
	verr := &utils.ValidationError{}
	sub.Reference = strings.TrimSpace(sub.Reference)
	switch {
	case sub.Reference == "":
		verr.Add("manual_reference", "This field is required.")
	case utf8.RuneCountInString(sub.Reference) > maxReferenceLen:
		verr.Add("manual_reference", fmt.Sprintf("Ensure this value has at most %d characters.", maxReferenceLen))
	}
	return verr.OrNil()
}

// SubmitManualPayment records the shopper's transfer reference and moves the
// order to PAYMENT_SUBMITTED. Submitting again overwrites the reference and
// keeps the earlier proof unless a new one is given.
func (s *Service) SubmitManualPayment(ctx context.Context, customerID, orderID uint, sub Submission) (models.Payment, error) {
	var payment models.Payment
	if err := sub.Validate(); err != nil {
		return payment, err
	}

	var order models.Order
	var from models.OrderStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.customerOrder(ctx, tx, customerID, orderID)
		if err != nil {
			return err
		}
		if order.PaymentMethod != models.PaymentMethodManual {
			return ErrPaymentClosed
		}

		from = order.Status
		next, err := orders.Transition(order.Status, orders.PaymentSubmitted)
		if err != nil {
			return ErrPaymentClosed
		}

		if order.Payment != nil {
			payment = *order.Payment
		} else {
			payment = models.Payment{OrderID: order.ID}
		}
		payment.Provider = models.PaymentProviderManual
		payment.Amount = order.Total
		payment.ManualReference = sub.Reference
		if sub.ProofPath != "" {
			payment.ManualProof = sub.ProofPath
		}
		payment.Status = models.PaymentStatusSubmitted
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", next).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}

	actor := strconv.FormatUint(uint64(customerID), 10)
	s.emit(ctx, paymentEvent(payment, actor))
	if from != order.Status {
		s.emit(ctx, orders.StatusChanged(order, from, actor))
	}
	log.Printf("order %s: manual payment submitted (%s)", order.OrderCode, payment.ManualReference)
	return payment, nil
}

func paymentEvent(p models.Payment, actorID string) events.Event {
	return events.Event{
		Name:       events.PaymentStatusChanged,
		ObjectType: "payment",
		ObjectID:   strconv.FormatUint(uint64(p.ID), 10),
		ActorID:    actorID,
		Metadata: map[string]any{
			"order_id": strconv.FormatUint(uint64(p.OrderID), 10),
			"status":   string(p.Status),
			"amount":   p.Amount.StringFixed(2),
		},
	}
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.Events.Emit(ctx, event); err != nil {
		log.Printf("%s %s hooks: %v", event.Name, event.ObjectID, err)
	}
}

// SetStatus persists a payment status and announces it. Order status follows
// through the payment.status_changed subscribers.
func (s *Service) SetStatus(ctx context.Context, payment *models.Payment, status models.PaymentStatus, actorID string) error {
	if !status.Valid() {
		return fmt.Errorf("unknown payment status %q", status)
	}
	if err := s.DB.WithContext(ctx).Model(payment).Update("status", status).Error; err != nil {
		return fmt.Errorf("update payment %d: %w", payment.ID, err)
	}
	payment.Status = status
	s.emit(ctx, paymentEvent(*payment, actorID))
	return nil
}

// BulkSetStatus sets the payment status of each order's payment. Orders
// without a payment are skipped.
func (s *Service) BulkSetStatus(ctx context.Context, orderIDs []uint, status models.PaymentStatus, actorID string) (orders.BulkResult, error) {
	var result orders.BulkResult
	for _, id := range orderIDs {
		var payment models.Payment
		err := s.DB.WithContext(ctx).Where("order_id = ?", id).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}
		if err := s.SetStatus(ctx, &payment, status, actorID); err != nil {
			return result, err
		}
		result.Updated++
	}
	return result, nil
}

// PaymentFilter narrows the staff payment list. Search matches the order
// code or the transfer reference.
type PaymentFilter struct {
	Status models.PaymentStatus
	Search string
}

// PaymentRow is a payment with the code of the order it pays for.
type PaymentRow struct {
	models.Payment
	OrderCode string `json:"order_code"`
}

// StaffList returns payments newest first.
func (s *Service) StaffList(ctx context.Context, filter PaymentFilter) ([]PaymentRow, error) {
	q := s.DB.WithContext(ctx).
		Table("payments").
		Select("payments.*, orders.order_code").
		Joins("JOIN orders ON orders.id = payments.order_id")
	if filter.Status != "" {
		q = q.Where("payments.status = ?", filter.Status)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("orders.order_code LIKE ? OR LOWER(payments.manual_reference) LIKE ?", like, like)
	}

	var rows []PaymentRow
	err := q.Order("payments.created_at DESC, payments.id DESC").Scan(&rows).Error
	return rows, err
}

// Get loads a payment by id for staff screens.
func (s *Service) Get(ctx context.Context, id uint) (models.Payment, error) {
	var payment models.Payment
	err := s.DB.WithContext(ctx).First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payment, ErrPaymentNotFound
	}
	return payment, err
}
