package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethodType string

const (
	PaymentMethodUPI   PaymentMethodType = "UPI"
	PaymentMethodBank  PaymentMethodType = "BANK"
	PaymentMethodQR    PaymentMethodType = "QR"
	PaymentMethodOther PaymentMethodType = "OTHER"
)

func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentMethodUPI, PaymentMethodBank, PaymentMethodQR, PaymentMethodOther:
		return true
	}
	return false
}

type PaymentMethod struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Name          string            `gorm:"size:120;not null" json:"name"`
	MethodType    PaymentMethodType `gorm:"size:20;not null" json:"method_type"`
	UPIID         string            `gorm:"column:upi_id;size:120" json:"upi_id"`
	AccountName   string            `gorm:"size:120" json:"account_name"`
	AccountNumber string            `gorm:"size:50" json:"account_number"`
	IFSCCode      string            `gorm:"column:ifsc_code;size:20" json:"ifsc_code"`
	BankName      string            `gorm:"size:120" json:"bank_name"`
	QRImage       string            `json:"qr_image"`
	Instructions  string            `gorm:"type:text" json:"instructions"`
	IsActive      bool              `gorm:"not null" json:"is_active"`
	SortOrder     uint              `gorm:"not null" json:"sort_order"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// DisplayLabel is the option text shown at checkout. QR methods show only
// their name since the details live in the image.
func (m PaymentMethod) DisplayLabel() string {
	if m.MethodType == PaymentMethodQR {
		return m.Name
	}
	switch {
	case m.UPIID != "":
		return fmt.Sprintf("%s (%s)", m.Name, m.UPIID)
	case m.AccountNumber != "":
		tail := m.AccountNumber
		if len(tail) > 4 {
			tail = tail[len(tail)-4:]
		}
		return fmt.Sprintf("%s (A/c ending %s)", m.Name, tail)
	}
	return m.Name
}

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "CREATED"
	PaymentStatusSubmitted PaymentStatus = "SUBMITTED"
	PaymentStatusCaptured  PaymentStatus = "CAPTURED"
	PaymentStatusVerified  PaymentStatus = "VERIFIED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusCreated, PaymentStatusSubmitted, PaymentStatusCaptured, PaymentStatusVerified, PaymentStatusFailed:
		return true
	}
	return false
}

const PaymentProviderManual = "MANUAL"

type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Provider        string          `gorm:"size:20;not null" json:"provider"`
	Status          PaymentStatus   `gorm:"size:20;not null;index" json:"status"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	ManualReference string          `gorm:"size:120" json:"manual_reference"`
	ManualProof     string          `json:"manual_proof"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
