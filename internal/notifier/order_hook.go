package notifier

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

// OrderHook tells customers about new orders and status changes by email
// and SMS. Sends run in the background; failures are only logged.
type OrderHook struct {
	DB     *gorm.DB
	Mailer Mailer
	SMS    SMSSender

	wg sync.WaitGroup
}

func NewOrderHook(conn *gorm.DB, mailer Mailer, sms SMSSender) *OrderHook {
	return &OrderHook{DB: conn, Mailer: mailer, SMS: sms}
}

type orderMessage struct {
	subject string
	text    string
}

func messageFor(event events.Event, order models.Order, customer models.Customer) (orderMessage, bool) {
	total := order.Total.StringFixed(2)
	switch {
	case event.Name == events.OrderPlaced:
		return orderMessage{
			subject: fmt.Sprintf("Order #%s received", order.OrderCode),
			text: fmt.Sprintf("Dear %s,\n\nThank you for your order #%s. Total: INR %s.\n"+
				"Complete the payment and submit the transaction reference so we can confirm it.",
				customer.Name, order.OrderCode, total),
		}, true
	case event.Name != events.OrderStatusChanged:
		return orderMessage{}, false
	}

	switch models.OrderStatus(event.Meta("to")) {
	case models.OrderStatusPaid:
		return orderMessage{
			subject: fmt.Sprintf("Order #%s confirmed", order.OrderCode),
			text:    fmt.Sprintf("Dear %s,\n\nWe have verified your payment of INR %s. Order #%s is confirmed.", customer.Name, total, order.OrderCode),
		}, true
	case models.OrderStatusPendingPayment:
		return orderMessage{
			subject: fmt.Sprintf("Payment issue on order #%s", order.OrderCode),
			text:    fmt.Sprintf("Dear %s,\n\nWe could not verify the payment for order #%s. Please submit it again.", customer.Name, order.OrderCode),
		}, true
	case models.OrderStatusShipped, models.OrderStatusOutForDelivery, models.OrderStatusDelivered, models.OrderStatusCancelled:
		label := order.Status.Label()
		return orderMessage{
			subject: fmt.Sprintf("Order #%s: %s", order.OrderCode, label),
			text:    fmt.Sprintf("Dear %s,\n\nYour order #%s is now %s.", customer.Name, order.OrderCode, label),
		}, true
	}
	return orderMessage{}, false
}

func (h *OrderHook) Notify(ctx context.Context, event events.Event) error {
	orderID, err := strconv.ParseUint(event.ObjectID, 10, 64)
	if err != nil || event.ObjectType != "order" {
		return nil
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).Preload("Customer").First(&order, orderID).Error; err != nil {
		log.Printf("notifier: load order %d: %v", orderID, err)
		return nil
	}
	if order.Customer == nil {
		return nil
	}
	customer := *order.Customer

	msg, ok := messageFor(event, order, customer)
	if !ok {
		return nil
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		bg := context.Background()

		if h.Mailer != nil && customer.Email != "" {
			err := h.Mailer.Send(bg, Email{To: []string{customer.Email}, Subject: msg.subject, Text: msg.text})
			if err != nil {
				log.Printf("Failed to email order %s to %s: %v", order.OrderCode, customer.Email, err)
			}
		}
		if h.SMS != nil && customer.Phone != "" {
			if err := h.SMS.SendSMS(bg, customer.Phone, msg.subject); err != nil {
				log.Printf("Failed to send SMS for order %s to %s: %v", order.OrderCode, customer.Phone, err)
			}
		}
	}()
	return nil
}

// Wait blocks until every background send has finished.
func (h *OrderHook) Wait() {
	h.wg.Wait()
}
