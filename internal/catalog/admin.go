package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

type CategoryRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Slug     string `json:"slug" binding:"max=140"`
	IsActive *bool  `json:"is_active"`
}

type ProductRequest struct {
	CategoryID  uint             `json:"category_id" binding:"required"`
	Name        string           `json:"name" binding:"required,max=200"`
	Slug        string           `json:"slug" binding:"max=220"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	MRP         *decimal.Decimal `json:"mrp"`
	Stock       uint             `json:"stock"`
	IsActive    *bool            `json:"is_active"`
}

type SizeRequest struct {
	Label     string `json:"label" binding:"required,max=50"`
	SortOrder uint   `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// uniqueSlug derives a slug from base and appends -2, -3... until no row of
// model uses it.
func (s *Service) uniqueSlug(ctx context.Context, model any, base string) (string, error) {
	slug := utils.Slugify(base)
	if slug == "" {
		slug = "item"
	}
	candidate := slug
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.WithContext(ctx).Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.Validate(req).OrNil(); err != nil {
		return models.Category{}, err
	}

	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Name
	}
	slug, err := s.uniqueSlug(ctx, &models.Category{}, base)
	if err != nil {
		return models.Category{}, err
	}

	category := models.Category{Name: req.Name, Slug: slug, IsActive: boolOr(req.IsActive, true)}
	err = s.DB.WithContext(ctx).Create(&category).Error
	return category, err
}

// DeleteCategory refuses while products still reference the category.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	res := s.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	verr := utils.Validate(req)
	if !req.Price.IsPositive() {
		verr.Add("price", "Ensure this value is greater than 0.")
	}
	if req.MRP != nil && req.MRP.IsNegative() {
		verr.Add("mrp", "Ensure this value is at least 0.")
	}
	if err := verr.OrNil(); err != nil {
		return models.Product{}, err
	}

	var category models.Category
	err := s.DB.WithContext(ctx).First(&category, req.CategoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrCategoryNotFound
	}
	if err != nil {
		return models.Product{}, err
	}

	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Name
	}
	slug, err := s.uniqueSlug(ctx, &models.Product{}, base)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		CategoryID:  category.ID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		IsActive:    boolOr(req.IsActive, true),
	}
	if req.MRP != nil {
		product.MRP = decimal.NewNullDecimal(req.MRP.Round(2))
	}
	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return models.Product{}, err
	}
	product.Category = category
	return product, nil
}

var ErrGalleryFull = errors.New("product already has four images")

// AttachImage stores path in the first empty image slot of a product.
func (s *Service) AttachImage(ctx context.Context, productID uint, path string) (models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrProductNotFound
	}
	if err != nil {
		return product, err
	}

	slots := []struct {
		column string
		value  *string
	}{
		{"image", &product.Image},
		{"image2", &product.Image2},
		{"image3", &product.Image3},
		{"image4", &product.Image4},
	}
	for _, slot := range slots {
		if *slot.value != "" {
			continue
		}
		*slot.value = path
		err := s.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Update(slot.column, path).Error
		return product, err
	}
	return product, ErrGalleryFull
}

func (s *Service) AddSize(ctx context.Context, productID uint, req SizeRequest) (models.ProductSize, error) {
	req.Label = strings.TrimSpace(req.Label)
	if err := utils.Validate(req).OrNil(); err != nil {
		return models.ProductSize{}, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return models.ProductSize{}, err
	}
	if count == 0 {
		return models.ProductSize{}, ErrProductNotFound
	}

	if err := s.DB.WithContext(ctx).Model(&models.ProductSize{}).
		Where("product_id = ? AND label = ?", productID, req.Label).
		Count(&count).Error; err != nil {
		return models.ProductSize{}, err
	}
	if count > 0 {
		verr := &utils.ValidationError{}
		verr.Add("label", "This product already has this size.")
		return models.ProductSize{}, verr
	}

	size := models.ProductSize{
		ProductID: productID,
		Label:     req.Label,
		SortOrder: req.SortOrder,
		IsActive:  boolOr(req.IsActive, true),
	}
	err := s.DB.WithContext(ctx).Create(&size).Error
	return size, err
}

// SetActive toggles is_active on a category, product, size or review.
func (s *Service) SetActive(ctx context.Context, model any, id uint, active bool) error {
	res := s.DB.WithContext(ctx).Model(model).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type PriceStats struct {
	CategoryID   uint    `json:"category_id"`
	Products     int64   `json:"products"`
	AveragePrice float64 `json:"average_price"`
}

// CategoryPriceStats reports how many active products a category has and
// their average list price.
func (s *Service) CategoryPriceStats(ctx context.Context, categoryID uint) (PriceStats, error) {
	stats := PriceStats{CategoryID: categoryID}

	var category models.Category
	err := s.DB.WithContext(ctx).First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, ErrCategoryNotFound
	}
	if err != nil {
		return stats, err
	}

	row := struct {
		Products int64
		Average  float64
	}{}
	err = s.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Select("COUNT(*) AS products, COALESCE(AVG(price), 0) AS average").
		Scan(&row).Error
	if err != nil {
		return stats, err
	}
	stats.Products = row.Products
	stats.AveragePrice = row.Average
	return stats, nil
}
