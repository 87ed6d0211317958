// Package checkout turns a reconciled session cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/cart"
	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	paymentField       = "manual_payment_method_id"
	noPaymentOptions   = "No payment options are configured. Please contact support."
	invalidPaymentPick = "Select a valid payment option."
)

type CheckoutForm struct {
	FullName              string `form:"full_name" json:"full_name" binding:"required,max=200"`
	Phone                 string `form:"phone" json:"phone" binding:"required,max=20"`
	AddressLine1          string `form:"address_line1" json:"address_line1" binding:"required,max=255"`
	AddressLine2          string `form:"address_line2" json:"address_line2" binding:"max=255"`
	City                  string `form:"city" json:"city" binding:"required,max=120"`
	State                 string `form:"state" json:"state" binding:"required,max=120"`
	Pincode               string `form:"pincode" json:"pincode" binding:"required,max=12"`
	ManualPaymentMethodID uint   `form:"manual_payment_method_id" json:"manual_payment_method_id"`
}

func (f *CheckoutForm) trim() {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.AddressLine1 = strings.TrimSpace(f.AddressLine1)
	f.AddressLine2 = strings.TrimSpace(f.AddressLine2)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.Pincode = strings.TrimSpace(f.Pincode)
}

type PaymentOption struct {
	ID         uint                     `json:"id"`
	Label      string                   `json:"label"`
	MethodType models.PaymentMethodType `json:"method_type"`
}

type Preview struct {
	Items          []cart.Item     `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	Total          decimal.Decimal `json:"total"`
	PaymentOptions []PaymentOption `json:"payment_options"`
}

type Service struct {
	DB       *gorm.DB
	Cart     *cart.Service
	Shipping *ShippingRule
	Events   *events.Emitter
	NextCode CodeSource
}

func NewService(conn *gorm.DB, carts *cart.Service, shipping *ShippingRule, bus *events.Emitter) *Service {
	return &Service{DB: conn, Cart: carts, Shipping: shipping, Events: bus, NextCode: RandomCode}
}

func PaymentURL(orderID uint) string {
	return fmt.Sprintf("/payments/manual/%d", orderID)
}

func (s *Service) activeMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("sort_order, name").Find(&methods).Error
	return methods, err
}

func (s *Service) totals(summary cart.Summary) (decimal.Decimal, decimal.Decimal, error) {
	count := 0
	for _, item := range summary.Items {
		count += item.Quantity
	}
	fee, err := s.Shipping.Fee(summary.Subtotal, count)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return fee, summary.Subtotal.Add(fee), nil
}

// Preview prices the session cart for the checkout page.
func (s *Service) Preview(ctx context.Context, sessionID string) (Preview, error) {
	summary, err := s.Cart.Items(ctx, sessionID)
	if err != nil {
		return Preview{}, err
	}
	if summary.Empty() {
		return Preview{}, ErrEmptyCart
	}

	fee, total, err := s.totals(summary)
	if err != nil {
		return Preview{}, err
	}

	methods, err := s.activeMethods(ctx)
	if err != nil {
		return Preview{}, err
	}
	options := make([]PaymentOption, 0, len(methods))
	for _, m := range methods {
		options = append(options, PaymentOption{ID: m.ID, Label: m.DisplayLabel(), MethodType: m.MethodType})
	}

	return Preview{
		Items:          summary.Items,
		Subtotal:       summary.Subtotal,
		ShippingFee:    fee,
		Total:          total,
		PaymentOptions: options,
	}, nil
}

func (s *Service) validate(ctx context.Context, form CheckoutForm) error {
	verr := utils.Validate(form)

	methods, err := s.activeMethods(ctx)
	if err != nil {
		return err
	}
	switch {
	case len(methods) == 0:
		verr.Add(paymentField, noPaymentOptions)
	case form.ManualPaymentMethodID == 0:
		verr.Add(paymentField, "This field is required.")
	default:
		found := false
		for _, m := range methods {
			if m.ID == form.ManualPaymentMethodID {
				found = true
				break
			}
		}
		if !found {
			verr.Add(paymentField, invalidPaymentPick)
		}
	}
	return verr.OrNil()
}

// PlaceOrder converts the session cart into a PENDING_PAYMENT order. The
// order header and every item are written in one transaction; on success
// the cart is cleared.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, customer models.Customer, form CheckoutForm) (models.Order, error) {
	var order models.Order

	summary, err := s.Cart.Items(ctx, sessionID)
	if err != nil {
		return order, err
	}
	if summary.Empty() {
		return order, ErrEmptyCart
	}

	form.trim()
	if err := s.validate(ctx, form); err != nil {
		return order, err
	}

	fee, total, err := s.totals(summary)
	if err != nil {
		return order, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := allocateCode(ctx, tx, s.NextCode)
		if err != nil {
			return err
		}

		customerID := customer.ID
		methodID := form.ManualPaymentMethodID
		order = models.Order{
			CustomerID:            &customerID,
			OrderCode:             code,
			FullName:              form.FullName,
			Phone:                 form.Phone,
			AddressLine1:          form.AddressLine1,
			AddressLine2:          form.AddressLine2,
			City:                  form.City,
			State:                 form.State,
			Pincode:               form.Pincode,
			PaymentMethod:         models.PaymentMethodManual,
			ManualPaymentMethodID: &methodID,
			Status:                models.OrderStatusPendingPayment,
			Subtotal:              summary.Subtotal,
			ShippingFee:           fee,
			Total:                 total,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(summary.Items))
		for _, line := range summary.Items {
			sizeLabel := ""
			if line.Size != nil {
				sizeLabel = line.Size.Label
			}
			items = append(items, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.Product.ID,
				SizeLabel:   sizeLabel,
				ProductName: line.Product.Name,
				UnitPrice:   line.UnitPrice,
				Quantity:    uint(line.Quantity),
				LineTotal:   line.LineTotal,
			})
		}
		if err := tx.CreateInBatches(&items, len(items)).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	if err := s.Cart.Clear(ctx, sessionID); err != nil {
		log.Printf("order %s placed but cart %s not cleared: %v", order.OrderCode, sessionID, err)
	}

	placed := events.Event{
		Name:       events.OrderPlaced,
		ObjectType: "order",
		ObjectID:   strconv.FormatUint(uint64(order.ID), 10),
		ActorID:    strconv.FormatUint(uint64(customer.ID), 10),
		Metadata: map[string]any{
			"order_code":  order.OrderCode,
			"customer_id": strconv.FormatUint(uint64(customer.ID), 10),
			"to":          string(order.Status),
			"total":       order.Total.StringFixed(2),
		},
	}
	if err := s.Events.Emit(ctx, placed); err != nil {
		log.Printf("order %s placed hooks: %v", order.OrderCode, err)
	}

	log.Printf("order %s placed by customer %d: %s", order.OrderCode, customer.ID, order.Total.StringFixed(2))
	return order, nil
}
