package orders

import (
	"errors"
	"fmt"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

var ErrTransitionRejected = errors.New("status transition not allowed")

// Event is something that moves an order through its lifecycle.
type Event string

const (
	PaymentSubmitted   Event = "payment_submitted"
	PaymentConfirmed   Event = "payment_confirmed"
	PaymentFailed      Event = "payment_failed"
	MarkReadyToGo      Event = "mark_ready_to_go"
	MarkShipped        Event = "mark_shipped"
	MarkOutForDelivery Event = "mark_out_for_delivery"
	MarkArrived        Event = "mark_arrived"
	MarkDelivered      Event = "mark_delivered"
	Cancel             Event = "cancel"
)

type rule struct {
	from []models.OrderStatus
	to   models.OrderStatus
}

var rules = map[Event]rule{
	PaymentSubmitted: {
		from: []models.OrderStatus{models.OrderStatusPendingPayment, models.OrderStatusPaymentSubmitted},
		to:   models.OrderStatusPaymentSubmitted,
	},
	PaymentConfirmed: {
		from: []models.OrderStatus{models.OrderStatusPendingPayment, models.OrderStatusPaymentSubmitted},
		to:   models.OrderStatusPaid,
	},
	PaymentFailed: {
		from: []models.OrderStatus{models.OrderStatusPaymentSubmitted, models.OrderStatusPaid},
		to:   models.OrderStatusPendingPayment,
	},
	MarkReadyToGo: {
		from: []models.OrderStatus{models.OrderStatusPaid},
		to:   models.OrderStatusReadyToGo,
	},
	MarkShipped: {
		from: []models.OrderStatus{models.OrderStatusPaid, models.OrderStatusReadyToGo},
		to:   models.OrderStatusShipped,
	},
	MarkOutForDelivery: {
		from: []models.OrderStatus{models.OrderStatusShipped},
		to:   models.OrderStatusOutForDelivery,
	},
	MarkArrived: {
		from: []models.OrderStatus{models.OrderStatusOutForDelivery},
		to:   models.OrderStatusArrived,
	},
	MarkDelivered: {
		from: []models.OrderStatus{models.OrderStatusOutForDelivery, models.OrderStatusArrived},
		to:   models.OrderStatusDelivered,
	},
	Cancel: {
		from: []models.OrderStatus{
			models.OrderStatusPendingPayment,
			models.OrderStatusPaymentSubmitted,
			models.OrderStatusPlaced,
			models.OrderStatusPaid,
			models.OrderStatusReadyToGo,
			models.OrderStatusShipped,
			models.OrderStatusOutForDelivery,
			models.OrderStatusArrived,
		},
		to: models.OrderStatusCancelled,
	},
}

func (e Event) Valid() bool {
	_, ok := rules[e]
	return ok
}

// Transition returns the status an order moves to when ev happens in
// status current.
func Transition(current models.OrderStatus, ev Event) (models.OrderStatus, error) {
	r, ok := rules[ev]
	if !ok {
		return current, fmt.Errorf("unknown event %q: %w", ev, ErrTransitionRejected)
	}
	for _, s := range r.from {
		if s == current {
			return r.to, nil
		}
	}
	return current, fmt.Errorf("%s from %s: %w", ev, current, ErrTransitionRejected)
}

// EventForPayment maps a saved payment status to the order event it
// implies, if any.
func EventForPayment(status models.PaymentStatus) (Event, bool) {
	switch status {
	case models.PaymentStatusCaptured, models.PaymentStatusVerified:
		return PaymentConfirmed, true
	case models.PaymentStatusFailed:
		return PaymentFailed, true
	}
	return "", false
}

func ThankYouAllowed(status models.OrderStatus) bool {
	switch status {
	case models.OrderStatusPaid,
		models.OrderStatusReadyToGo,
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
		models.OrderStatusArrived,
		models.OrderStatusDelivered:
		return true
	}
	return false
}

func AcceptsPayment(status models.OrderStatus) bool {
	return status == models.OrderStatusPendingPayment || status == models.OrderStatusPaymentSubmitted
}

type Step struct {
	Value   models.OrderStatus `json:"value"`
	Label   string             `json:"label"`
	Done    bool               `json:"done"`
	Current bool               `json:"current"`
}

var trackingSteps = []models.OrderStatus{
	models.OrderStatusPlaced,
	models.OrderStatusPendingPayment,
	models.OrderStatusPaymentSubmitted,
	models.OrderStatusPaid,
	models.OrderStatusReadyToGo,
	models.OrderStatusShipped,
	models.OrderStatusOutForDelivery,
	models.OrderStatusArrived,
	models.OrderStatusDelivered,
}

func progress(status models.OrderStatus) int {
	for i, s := range trackingSteps {
		if s == status {
			return i
		}
	}
	return 0
}

// Tracking lays out the progress bar for an order. A cancelled order gets
// an extra CANCELLED step and nothing before it counts as done.
func Tracking(status models.OrderStatus) []Step {
	cancelled := status == models.OrderStatusCancelled
	current := progress(status)

	steps := make([]Step, 0, len(trackingSteps)+1)
	for i, s := range trackingSteps {
		steps = append(steps, Step{
			Value:   s,
			Label:   s.Label(),
			Done:    !cancelled && current >= i,
			Current: !cancelled && s == status,
		})
	}
	if cancelled {
		steps = append(steps, Step{
			Value:   models.OrderStatusCancelled,
			Label:   models.OrderStatusCancelled.Label(),
			Done:    true,
			Current: true,
		})
	}
	return steps
}
