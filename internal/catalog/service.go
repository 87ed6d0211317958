// Package catalog serves categories, products, sizes and reviews.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryInUse    = errors.New("category still has products")
)

type Service struct {
	DB *gorm.DB
}

func NewService(conn *gorm.DB) *Service {
	return &Service{DB: conn}
}

type ProductList struct {
	Category *models.Category `json:"category,omitempty"`
	Query    string           `json:"query,omitempty"`
	Products []models.Product `json:"products"`
}

type ProductDetail struct {
	Product       models.Product         `json:"product"`
	SellingPrice  decimal.Decimal        `json:"selling_price"`
	OriginalPrice *decimal.Decimal       `json:"original_price,omitempty"`
	Sizes         []models.ProductSize   `json:"sizes"`
	Reviews       []models.ProductReview `json:"reviews"`
	Gallery       []string               `json:"gallery"`
}

func activeSizes(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("sort_order, label")
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&categories).Error
	return categories, err
}

// ListProducts returns active products, optionally limited to one active
// category and to names containing query.
func (s *Service) ListProducts(ctx context.Context, categorySlug, query string) (ProductList, error) {
	list := ProductList{Query: strings.TrimSpace(query)}
	q := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Sizes", activeSizes).
		Where("is_active = ?", true)

	if categorySlug != "" {
		var category models.Category
		err := s.DB.WithContext(ctx).Where("slug = ? AND is_active = ?", categorySlug, true).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return list, ErrCategoryNotFound
		}
		if err != nil {
			return list, err
		}
		list.Category = &category
		q = q.Where("category_id = ?", category.ID)
	}

	if list.Query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(list.Query)+"%")
	}

	err := q.Order("created_at DESC, id DESC").Find(&list.Products).Error
	return list, err
}

func (s *Service) activeProduct(ctx context.Context, slug string) (models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Sizes", activeSizes).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at DESC, id DESC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, ErrProductNotFound
	}
	return product, err
}

func (s *Service) ProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	product, err := s.activeProduct(ctx, slug)
	if err != nil {
		return ProductDetail{}, err
	}

	detail := ProductDetail{
		Product:      product,
		SellingPrice: product.SellingPrice(),
		Sizes:        product.Sizes,
		Reviews:      product.Reviews,
		Gallery:      product.Gallery(),
	}
	if original, ok := product.OriginalPrice(); ok {
		detail.OriginalPrice = &original
	}
	return detail, nil
}

type ReviewForm struct {
	Name    string `form:"name" json:"name" binding:"max=120"`
	Rating  int    `form:"rating" json:"rating" binding:"required,min=1,max=5"`
	Comment string `form:"comment" json:"comment"`
}

// CreateReview adds an active review. Signed-in reviewers are linked to
// their account; anonymous ones default to the name "Customer".
func (s *Service) CreateReview(ctx context.Context, slug string, customer *models.Customer, form ReviewForm) (models.ProductReview, error) {
	var review models.ProductReview

	product, err := s.activeProduct(ctx, slug)
	if err != nil {
		return review, err
	}

	form.Name = strings.TrimSpace(form.Name)
	if err := utils.Validate(form).OrNil(); err != nil {
		return review, err
	}

	review = models.ProductReview{
		ProductID: product.ID,
		Rating:    uint8(form.Rating),
		Comment:   strings.TrimSpace(form.Comment),
		IsActive:  true,
	}
	switch {
	case customer != nil:
		id := customer.ID
		review.CustomerID = &id
	case form.Name == "":
		review.Name = "Customer"
	default:
		review.Name = form.Name
	}

	err = s.DB.WithContext(ctx).Create(&review).Error
	return review, err
}
