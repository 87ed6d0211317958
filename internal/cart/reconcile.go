package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

type Item struct {
	Key       string              `json:"key"`
	Product   models.Product      `json:"product"`
	Size      *models.ProductSize `json:"size"`
	SizeID    uint                `json:"size_id"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	LineTotal decimal.Decimal     `json:"line_total"`
}

type Summary struct {
	Items    []Item          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (s Summary) Empty() bool {
	return len(s.Items) == 0
}

type parsedEntry struct {
	productID int64
	sizeID    int64
	value     any
}

// catalogView is the slice of catalog state one reconciliation needs.
type catalogView struct {
	products       map[uint]models.Product
	sizes          map[uint]models.ProductSize
	sizesByProduct map[uint][]models.ProductSize
}

func loadCatalogView(ctx context.Context, conn *gorm.DB, productIDs []int64) (catalogView, error) {
	view := catalogView{
		products:       make(map[uint]models.Product),
		sizes:          make(map[uint]models.ProductSize),
		sizesByProduct: make(map[uint][]models.ProductSize),
	}
	if len(productIDs) == 0 {
		return view, nil
	}

	var products []models.Product
	if err := conn.WithContext(ctx).
		Where("id IN ? AND is_active = ?", productIDs, true).
		Find(&products).Error; err != nil {
		return view, fmt.Errorf("load cart products: %w", err)
	}
	for _, p := range products {
		view.products[p.ID] = p
	}

	var sizes []models.ProductSize
	if err := conn.WithContext(ctx).
		Where("product_id IN ? AND is_active = ?", productIDs, true).
		Order("sort_order, label").
		Find(&sizes).Error; err != nil {
		return view, fmt.Errorf("load cart sizes: %w", err)
	}
	for _, s := range sizes {
		view.sizes[s.ID] = s
		view.sizesByProduct[s.ProductID] = append(view.sizesByProduct[s.ProductID], s)
	}
	return view, nil
}

// resolveSize keeps a size that belongs to the product and is active, and
// otherwise falls back to the product's first active size, if any.
func (v catalogView) resolveSize(product models.Product, sizeID int64) (uint, *models.ProductSize) {
	if sizeID > 0 {
		if size, ok := v.sizes[uint(sizeID)]; ok && size.ProductID == product.ID {
			return size.ID, &size
		}
	}
	if defaults := v.sizesByProduct[product.ID]; len(defaults) > 0 {
		size := defaults[0]
		return size.ID, &size
	}
	return 0, nil
}

// Reconcile prices a raw cart against the live catalog. It returns the
// priced items and the normalized cart; entries that cannot be resolved are
// dropped and duplicate keys are merged.
func Reconcile(ctx context.Context, conn *gorm.DB, raw Raw) (Summary, Cart, error) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var entries []parsedEntry
	var productIDs []int64
	for _, key := range keys {
		pid, sid, ok := ParseKey(key)
		if !ok {
			continue
		}
		entries = append(entries, parsedEntry{productID: pid, sizeID: sid, value: raw[key]})
		productIDs = append(productIDs, pid)
	}

	summary := Summary{Subtotal: decimal.Zero}
	normalized := Cart{}

	view, err := loadCatalogView(ctx, conn, productIDs)
	if err != nil {
		return summary, nil, err
	}

	var order []string
	byKey := make(map[string]*Item)
	for _, e := range entries {
		if e.productID <= 0 {
			continue
		}
		product, ok := view.products[uint(e.productID)]
		if !ok {
			continue
		}
		qty, ok := parseQuantity(e.value)
		if !ok || qty <= 0 {
			continue
		}

		sizeID, size := view.resolveSize(product, e.sizeID)
		key := Key(product.ID, sizeID)
		normalized[key] = addQuantity(normalized[key], qty)

		if item, ok := byKey[key]; ok {
			item.Quantity = addQuantity(item.Quantity, qty)
			continue
		}
		byKey[key] = &Item{Key: key, Product: product, Size: size, SizeID: sizeID, Quantity: qty}
		order = append(order, key)
	}

	for _, key := range order {
		item := byKey[key]
		item.UnitPrice = item.Product.SellingPrice()
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		summary.Subtotal = summary.Subtotal.Add(item.LineTotal)
		summary.Items = append(summary.Items, *item)
	}

	return summary, normalized, nil
}
