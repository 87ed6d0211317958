package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/orders"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		event   orders.Event
		want    models.OrderStatus
		allowed bool
	}{
		{"submit from pending", models.OrderStatusPendingPayment, orders.PaymentSubmitted, models.OrderStatusPaymentSubmitted, true},
		{"resubmit", models.OrderStatusPaymentSubmitted, orders.PaymentSubmitted, models.OrderStatusPaymentSubmitted, true},
		{"submit after paid", models.OrderStatusPaid, orders.PaymentSubmitted, models.OrderStatusPaid, false},
		{"confirm from pending", models.OrderStatusPendingPayment, orders.PaymentConfirmed, models.OrderStatusPaid, true},
		{"confirm after ship", models.OrderStatusShipped, orders.PaymentConfirmed, models.OrderStatusShipped, false},
		{"fail reverts paid", models.OrderStatusPaid, orders.PaymentFailed, models.OrderStatusPendingPayment, true},
		{"fail from pending", models.OrderStatusPendingPayment, orders.PaymentFailed, models.OrderStatusPendingPayment, false},
		{"ship unpaid", models.OrderStatusPendingPayment, orders.MarkShipped, models.OrderStatusPendingPayment, false},
		{"ship ready", models.OrderStatusReadyToGo, orders.MarkShipped, models.OrderStatusShipped, true},
		{"deliver skipping arrived", models.OrderStatusOutForDelivery, orders.MarkDelivered, models.OrderStatusDelivered, true},
		{"cancel legacy placed", models.OrderStatusPlaced, orders.Cancel, models.OrderStatusCancelled, true},
		{"cancel delivered", models.OrderStatusDelivered, orders.Cancel, models.OrderStatusDelivered, false},
		{"cancel twice", models.OrderStatusCancelled, orders.Cancel, models.OrderStatusCancelled, false},
		{"unknown event", models.OrderStatusPaid, orders.Event("refund"), models.OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orders.Transition(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, orders.ErrTransitionRejected)
			}
		})
	}
}

func TestThankYouAllowed(t *testing.T) {
	assert.True(t, orders.ThankYouAllowed(models.OrderStatusPaid))
	assert.True(t, orders.ThankYouAllowed(models.OrderStatusDelivered))
	assert.False(t, orders.ThankYouAllowed(models.OrderStatusPendingPayment))
	assert.False(t, orders.ThankYouAllowed(models.OrderStatusPaymentSubmitted))
	assert.False(t, orders.ThankYouAllowed(models.OrderStatusCancelled))
}

func TestTracking(t *testing.T) {
	t.Run("In progress", func(t *testing.T) {
		steps := orders.Tracking(models.OrderStatusShipped)
		assert.Len(t, steps, 9)

		var done, current int
		for _, s := range steps {
			if s.Done {
				done++
			}
			if s.Current {
				current++
				assert.Equal(t, models.OrderStatusShipped, s.Value)
			}
		}
		assert.Equal(t, 6, done)
		assert.Equal(t, 1, current)
		assert.Equal(t, "Confirmed", steps[3].Label)
	})

	t.Run("Cancelled", func(t *testing.T) {
		steps := orders.Tracking(models.OrderStatusCancelled)
		assert.Len(t, steps, 10)
		for _, s := range steps[:9] {
			assert.False(t, s.Done)
		}
		last := steps[9]
		assert.Equal(t, models.OrderStatusCancelled, last.Value)
		assert.True(t, last.Done)
		assert.True(t, last.Current)
	})
}
