package cart

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// Service reads and mutates session carts, reconciling them against the
// catalog on every access.
type Service struct {
	DB    *gorm.DB
	Store Store
}

func NewService(conn *gorm.DB, store Store) *Service {
	return &Service{DB: conn, Store: store}
}

// Items returns the reconciled cart for a session. When reconciliation
// changed anything the normalized cart is written back.
func (s *Service) Items(ctx context.Context, sessionID string) (Summary, error) {
	summary, _, err := s.load(ctx, sessionID)
	return summary, err
}

func (s *Service) load(ctx context.Context, sessionID string) (Summary, Cart, error) {
	raw, err := s.Store.Load(ctx, sessionID)
	if err != nil {
		return Summary{}, nil, err
	}

	summary, normalized, err := Reconcile(ctx, s.DB, raw)
	if err != nil {
		return Summary{}, nil, err
	}

	if !sameCart(raw, normalized) {
		if err := s.Store.Save(ctx, sessionID, normalized); err != nil {
			return Summary{}, nil, err
		}
		log.Printf("cart %s normalized: %d raw entries -> %d", sessionID, len(raw), len(normalized))
	}
	return summary, normalized, nil
}

// Add puts quantity (at least 1) of a product on top of whatever the cart
// already holds for the same product and size.
func (s *Service) Add(ctx context.Context, sessionID string, productID uint, sizeID uint, quantity int) error {
	product, err := s.activeProduct(ctx, int64(productID))
	if err != nil {
		return err
	}
	resolved, err := s.resolveSize(ctx, product, int64(sizeID))
	if err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}
	quantity = clampQuantity(int64(quantity))

	_, c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	key := Key(product.ID, resolved)
	c[key] = addQuantity(c[key], quantity)
	return s.Store.Save(ctx, sessionID, c)
}

// SetQuantity replaces the quantity for an item key. Zero or less removes
// the item. Keys that do not parse leave the cart alone.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, itemKey string, quantity int) error {
	pid, sid, ok := ParseKey(itemKey)
	if !ok {
		return nil
	}
	product, err := s.activeProduct(ctx, pid)
	if err != nil {
		return err
	}
	resolved, err := s.resolveSize(ctx, product, sid)
	if err != nil {
		return err
	}

	_, c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	key := Key(product.ID, resolved)
	delete(c, itemKey)
	if quantity <= 0 {
		delete(c, key)
	} else {
		c[key] = clampQuantity(int64(quantity))
	}
	return s.Store.Save(ctx, sessionID, c)
}

// Remove drops an item key and its normalized form.
func (s *Service) Remove(ctx context.Context, sessionID string, itemKey string) error {
	_, c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	delete(c, itemKey)

	if pid, sid, ok := ParseKey(itemKey); ok {
		if product, err := s.activeProduct(ctx, pid); err == nil {
			resolved, err := s.resolveSize(ctx, product, sid)
			if err != nil {
				return err
			}
			delete(c, Key(product.ID, resolved))
		} else if !errors.Is(err, ErrProductNotFound) {
			return err
		}
	}
	return s.Store.Save(ctx, sessionID, c)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.Store.Save(ctx, sessionID, Cart{})
}

// Count sums the stored quantities without touching the catalog.
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	raw, err := s.Store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, v := range raw {
		if q, ok := parseQuantity(v); ok && q > 0 {
			count = addQuantity(count, q)
		}
	}
	return count, nil
}

func (s *Service) activeProduct(ctx context.Context, productID int64) (models.Product, error) {
	var product models.Product
	if productID <= 0 {
		return product, ErrProductNotFound
	}
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", productID, true).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrProductNotFound
	}
	if err != nil {
		return product, fmt.Errorf("load product %d: %w", productID, err)
	}
	return product, nil
}

func (s *Service) resolveSize(ctx context.Context, product models.Product, sizeID int64) (uint, error) {
	if sizeID > 0 {
		var count int64
		err := s.DB.WithContext(ctx).Model(&models.ProductSize{}).
			Where("id = ? AND product_id = ? AND is_active = ?", sizeID, product.ID, true).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		if count > 0 {
			return uint(sizeID), nil
		}
	}

	var size models.ProductSize
	err := s.DB.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", product.ID, true).
		Order("sort_order, label").
		First(&size).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return size.ID, nil
}
