package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	CategoryID  uint                `gorm:"index;not null" json:"category_id"`
	Category    Category            `gorm:"constraint:OnDelete:RESTRICT" json:"category"`
	Name        string              `gorm:"size:200;not null" json:"name"`
	Slug        string              `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string              `gorm:"type:text" json:"description"`
	Price       decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`
	MRP         decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"mrp"`
	Stock       uint                `gorm:"not null" json:"stock"` // informational, never decremented
	Image       string              `json:"image"`
	Image2      string              `json:"image2"`
	Image3      string              `json:"image3"`
	Image4      string              `json:"image4"`
	IsActive    bool                `gorm:"not null;index" json:"is_active"`
	Sizes       []ProductSize       `gorm:"constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
	Reviews     []ProductReview     `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// SellingPrice is the price a shopper pays: price, or the lower of price
// and MRP when a positive MRP is set.
func (p Product) SellingPrice() decimal.Decimal {
	if !p.MRP.Valid || !p.MRP.Decimal.IsPositive() {
		return p.Price
	}
	return decimal.Min(p.Price, p.MRP.Decimal)
}

// OriginalPrice returns the struck-through list price, if there is a
// discount to show.
func (p Product) OriginalPrice() (decimal.Decimal, bool) {
	if !p.MRP.Valid || !p.MRP.Decimal.IsPositive() {
		return decimal.Decimal{}, false
	}
	selling := p.SellingPrice()
	original := decimal.Max(p.Price, p.MRP.Decimal)
	if original.GreaterThan(selling) {
		return original, true
	}
	return decimal.Decimal{}, false
}

func (p Product) Gallery() []string {
	var images []string
	for _, img := range []string{p.Image, p.Image2, p.Image3, p.Image4} {
		if img != "" {
			images = append(images, img)
		}
	}
	return images
}

type ProductSize struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"uniqueIndex:idx_product_size_label;not null" json:"product_id"`
	Label     string `gorm:"size:50;uniqueIndex:idx_product_size_label;not null" json:"label"`
	SortOrder uint   `gorm:"not null" json:"sort_order"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

type ProductReview struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	CustomerID *uint     `gorm:"index" json:"customer_id"`
	Customer   *Customer `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Name       string    `gorm:"size:120" json:"name"`
	Rating     uint8     `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
