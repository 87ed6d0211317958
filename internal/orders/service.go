package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/events"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

type Service struct {
	DB     *gorm.DB
	Events *events.Emitter
}

func NewService(conn *gorm.DB, bus *events.Emitter) *Service {
	return &Service{DB: conn, Events: bus}
}

type BulkResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// StaffFilter narrows the staff order list. Search matches order code, name
// or phone.
type StaffFilter struct {
	Status models.OrderStatus
	Search string
}

// List returns the customer's orders, newest first.
func (s *Service) List(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// Get loads one of the customer's orders. Orders belonging to someone else
// are reported as not found.
func (s *Service) Get(ctx context.Context, customerID, orderID uint) (models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Preload("ManualPaymentMethod").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, ErrOrderNotFound
	}
	return order, err
}

func (s *Service) StaffList(ctx context.Context, filter StaffFilter) ([]models.Order, error) {
	q := s.DB.WithContext(ctx).Preload("Items").Preload("Payment").Preload("ManualPaymentMethod")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("order_code LIKE ? OR LOWER(full_name) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var orders []models.Order
	err := q.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

// Apply runs ev against each order. Missing orders and orders whose status
// does not allow ev are skipped.
func (s *Service) Apply(ctx context.Context, orderIDs []uint, ev Event, actorID string) (BulkResult, error) {
	var result BulkResult
	if !ev.Valid() {
		return result, fmt.Errorf("unknown event %q: %w", ev, ErrTransitionRejected)
	}

	for _, id := range orderIDs {
		var order models.Order
		err := s.DB.WithContext(ctx).First(&order, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}

		changed, err := s.advance(ctx, &order, ev, actorID)
		if err != nil {
			return result, err
		}
		if changed {
			result.Updated++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// advance applies ev to order and persists it. It reports false when the
// transition is rejected.
func (s *Service) advance(ctx context.Context, order *models.Order, ev Event, actorID string) (bool, error) {
	from := order.Status
	next, err := Transition(from, ev)
	if errors.Is(err, ErrTransitionRejected) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.DB.WithContext(ctx).Model(order).Update("status", next).Error; err != nil {
		return false, fmt.Errorf("update order %d status: %w", order.ID, err)
	}
	order.Status = next

	if err := s.Events.Emit(ctx, StatusChanged(*order, from, actorID)); err != nil {
		log.Printf("order %s status hooks: %v", order.OrderCode, err)
	}
	return true, nil
}

// StatusChanged builds the order.status_changed event for an order that
// just left status from.
func StatusChanged(order models.Order, from models.OrderStatus, actorID string) events.Event {
	meta := map[string]any{
		"order_code": order.OrderCode,
		"from":       string(from),
		"to":         string(order.Status),
		"total":      order.Total.StringFixed(2),
	}
	if order.CustomerID != nil {
		meta["customer_id"] = strconv.FormatUint(uint64(*order.CustomerID), 10)
	}
	return events.Event{
		Name:       events.OrderStatusChanged,
		ObjectType: "order",
		ObjectID:   strconv.FormatUint(uint64(order.ID), 10),
		ActorID:    actorID,
		Metadata:   meta,
	}
}

// PaymentStatusHook moves orders when their payment is confirmed or fails.
// Rejected transitions leave the order alone.
func (s *Service) PaymentStatusHook() events.Hook {
	return events.HookFunc(func(ctx context.Context, event events.Event) error {
		if event.Name != events.PaymentStatusChanged {
			return nil
		}
		ev, ok := EventForPayment(models.PaymentStatus(event.Meta("status")))
		if !ok {
			return nil
		}

		orderID, err := strconv.ParseUint(event.Meta("order_id"), 10, 64)
		if err != nil {
			return fmt.Errorf("payment event without order id: %w", err)
		}

		var order models.Order
		if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
			return fmt.Errorf("load order %d for payment: %w", orderID, err)
		}

		changed, err := s.advance(ctx, &order, ev, event.ActorID)
		if err != nil {
			return err
		}
		if !changed {
			log.Printf("order %s: payment %s ignored in status %s", order.OrderCode, event.Meta("status"), order.Status)
		}
		return nil
	})
}
