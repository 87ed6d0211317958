package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "PENDING_PAYMENT"
	OrderStatusPaymentSubmitted OrderStatus = "PAYMENT_SUBMITTED"
	OrderStatusPlaced           OrderStatus = "PLACED" // legacy, never assigned
	OrderStatusPaid             OrderStatus = "PAID"
	OrderStatusReadyToGo        OrderStatus = "READY_TO_GO"
	OrderStatusShipped          OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery   OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusArrived          OrderStatus = "ARRIVED"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPendingPayment:   "Pending Payment",
	OrderStatusPaymentSubmitted: "Payment Submitted",
	OrderStatusPlaced:           "Placed",
	OrderStatusPaid:             "Confirmed",
	OrderStatusReadyToGo:        "Ready to Go",
	OrderStatusShipped:          "Shipped",
	OrderStatusOutForDelivery:   "Out for Delivery",
	OrderStatusArrived:          "Arrived",
	OrderStatusDelivered:        "Delivered",
	OrderStatusCancelled:        "Cancelled",
}

func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

const PaymentMethodManual = "MANUAL"

type Order struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	CustomerID            *uint           `gorm:"index" json:"customer_id"`
	Customer              *Customer       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	OrderCode             string          `gorm:"size:12;uniqueIndex;not null" json:"order_code"`
	FullName              string          `gorm:"size:200;not null" json:"full_name"`
	Phone                 string          `gorm:"size:20;not null" json:"phone"`
	AddressLine1          string          `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2          string          `gorm:"size:255" json:"address_line2"`
	City                  string          `gorm:"size:120;not null" json:"city"`
	State                 string          `gorm:"size:120;not null" json:"state"`
	Pincode               string          `gorm:"size:12;not null" json:"pincode"`
	PaymentMethod         string          `gorm:"size:20;not null" json:"payment_method"`
	ManualPaymentMethodID *uint           `gorm:"index" json:"manual_payment_method_id"`
	ManualPaymentMethod   *PaymentMethod  `gorm:"constraint:OnDelete:RESTRICT" json:"manual_payment_method,omitempty"`
	Status                OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	ShippingFee           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_fee"`
	Total                 decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Items                 []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payment               *Payment        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"index;not null" json:"product_id"`
	Product     Product         `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	SizeLabel   string          `gorm:"size:50;not null" json:"size_label"`
	ProductName string          `gorm:"size:200;not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    uint            `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
}
