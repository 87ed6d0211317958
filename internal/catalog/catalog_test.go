package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-storefront/internal/catalog"
	"github.com/Keoroanthony/go-storefront/internal/models"
	"github.com/Keoroanthony/go-storefront/internal/testutil"
	"github.com/Keoroanthony/go-storefront/internal/utils"
)

func TestListProducts(t *testing.T) {
	conn := testutil.OpenDB(t)
	ctx := context.Background()
	svc := catalog.NewService(conn)

	shirts := testutil.CreateCategory(t, conn, "shirts")
	mugs := testutil.CreateCategory(t, conn, "mugs")
	closed := testutil.CreateCategory(t, conn, "closed")
	require.NoError(t, svc.SetActive(ctx, &models.Category{}, closed.ID, false))

	oxford := testutil.CreateProduct(t, conn, shirts, "oxford-shirt", "900.00")
	linen := testutil.CreateProduct(t, conn, shirts, "linen-shirt", "1100.00")
	require.NoError(t, conn.Model(&linen).Update("created_at", time.Now().Add(time.Hour)).Error)
	testutil.CreateProduct(t, conn, mugs, "steel-mug", "300.00")
	hidden := testutil.CreateProduct(t, conn, shirts, "hidden-shirt", "100.00")
	require.NoError(t, svc.SetActive(ctx, &models.Product{}, hidden.ID, false))

	testutil.CreateSize(t, conn, oxford, "L", 2, true)
	testutil.CreateSize(t, conn, oxford, "M", 1, true)
	testutil.CreateSize(t, conn, oxford, "XS", 0, false)

	t.Run("All active products newest first", func(t *testing.T) {
		list, err := svc.ListProducts(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, list.Products, 3)
		assert.Equal(t, "linen-shirt", list.Products[0].Slug)
		assert.Nil(t, list.Category)
	})

	t.Run("Filters by category and query", func(t *testing.T) {
		list, err := svc.ListProducts(ctx, "shirts", "OXFORD")
		require.NoError(t, err)
		require.NotNil(t, list.Category)
		require.Len(t, list.Products, 1)
		assert.Equal(t, oxford.ID, list.Products[0].ID)

		sizes := list.Products[0].Sizes
		require.Len(t, sizes, 2)
		assert.Equal(t, "M", sizes[0].Label)
		assert.Equal(t, "L", sizes[1].Label)
	})

	t.Run("Inactive or unknown category is not found", func(t *testing.T) {
		_, err := svc.ListProducts(ctx, "closed", "")
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
		_, err = svc.ListProducts(ctx, "nope", "")
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})

	t.Run("Categories are active and sorted by name", func(t *testing.T) {
		categories, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "mugs", categories[0].Name)
		assert.Equal(t, "shirts", categories[1].Name)
	})
}

func TestProductDetailAndReviews(t *testing.T) {
	conn := testutil.OpenDB(t)
	ctx := context.Background()
	svc := catalog.NewService(conn)

	category := testutil.CreateCategory(t, conn, "shoes")
	runner := testutil.CreateProduct(t, conn, category, "runner", "2000.00")
	runner.MRP = decimal.NewNullDecimal(testutil.Money("1500.00"))
	runner.Image = "products/a.jpg"
	runner.Image3 = "products/c.jpg"
	require.NoError(t, conn.Save(&runner).Error)
	customer := testutil.CreateCustomer(t, conn, "buyer@example.com", false)

	t.Run("Detail carries prices and gallery", func(t *testing.T) {
		detail, err := svc.ProductDetail(ctx, "runner")
		require.NoError(t, err)
		assert.True(t, detail.SellingPrice.Equal(testutil.Money("1500.00")))
		require.NotNil(t, detail.OriginalPrice)
		assert.True(t, detail.OriginalPrice.Equal(testutil.Money("2000.00")))
		assert.Equal(t, []string{"products/a.jpg", "products/c.jpg"}, detail.Gallery)
	})

	t.Run("Anonymous review defaults the name", func(t *testing.T) {
		review, err := svc.CreateReview(ctx, "runner", nil, catalog.ReviewForm{Rating: 4, Comment: " comfy "})
		require.NoError(t, err)
		assert.Equal(t, "Customer", review.Name)
		assert.Equal(t, "comfy", review.Comment)
		assert.Nil(t, review.CustomerID)
	})

	t.Run("Signed-in review links the customer", func(t *testing.T) {
		review, err := svc.CreateReview(ctx, "runner", &customer, catalog.ReviewForm{Name: "ignored", Rating: 5})
		require.NoError(t, err)
		assert.Empty(t, review.Name)
		require.NotNil(t, review.CustomerID)
		assert.Equal(t, customer.ID, *review.CustomerID)
	})

	t.Run("Rating out of range is rejected", func(t *testing.T) {
		for _, rating := range []int{0, 6} {
			_, err := svc.CreateReview(ctx, "runner", nil, catalog.ReviewForm{Rating: rating})
			var verr *utils.ValidationError
			require.True(t, errors.As(err, &verr), "rating %d", rating)
			assert.Contains(t, verr.Fields, "rating")
		}
	})

	t.Run("Only active reviews show newest first", func(t *testing.T) {
		hidden, err := svc.CreateReview(ctx, "runner", nil, catalog.ReviewForm{Rating: 1})
		require.NoError(t, err)
		require.NoError(t, svc.SetActive(ctx, &models.ProductReview{}, hidden.ID, false))

		detail, err := svc.ProductDetail(ctx, "runner")
		require.NoError(t, err)
		require.Len(t, detail.Reviews, 2)
		assert.EqualValues(t, 5, detail.Reviews[0].Rating)
	})

	t.Run("Inactive product is not found", func(t *testing.T) {
		require.NoError(t, svc.SetActive(ctx, &models.Product{}, runner.ID, false))
		_, err := svc.ProductDetail(ctx, "runner")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
		_, err = svc.CreateReview(ctx, "runner", nil, catalog.ReviewForm{Rating: 3})
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestStaffCatalog(t *testing.T) {
	conn := testutil.OpenDB(t)
	ctx := context.Background()
	svc := catalog.NewService(conn)

	t.Run("Category slugs are derived and unique", func(t *testing.T) {
		first, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Summer Wear"})
		require.NoError(t, err)
		assert.Equal(t, "summer-wear", first.Slug)
		assert.True(t, first.IsActive)

		second, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Summer  wear!"})
		require.NoError(t, err)
		assert.Equal(t, "summer-wear-2", second.Slug)
	})

	category, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Bags"})
	require.NoError(t, err)

	t.Run("Create product validates price and category", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, catalog.ProductRequest{CategoryID: category.ID, Name: "Tote"})
		var verr *utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "price")

		_, err = svc.CreateProduct(ctx, catalog.ProductRequest{CategoryID: 999, Name: "Tote", Price: testutil.Money("10")})
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})

	mrp := testutil.Money("1200")
	tote, err := svc.CreateProduct(ctx, catalog.ProductRequest{
		CategoryID: category.ID,
		Name:       "Canvas Tote",
		Price:      testutil.Money("999.999"),
		MRP:        &mrp,
		Stock:      4,
	})
	require.NoError(t, err)
	assert.Equal(t, "canvas-tote", tote.Slug)
	assert.True(t, tote.Price.Equal(testutil.Money("1000.00")))
	assert.Equal(t, "Bags", tote.Category.Name)

	t.Run("Sizes are unique per product", func(t *testing.T) {
		_, err := svc.AddSize(ctx, tote.ID, catalog.SizeRequest{Label: "Large", SortOrder: 1})
		require.NoError(t, err)

		_, err = svc.AddSize(ctx, tote.ID, catalog.SizeRequest{Label: "Large"})
		var verr *utils.ValidationError
		require.True(t, errors.As(err, &verr))

		_, err = svc.AddSize(ctx, 999, catalog.SizeRequest{Label: "Large"})
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})

	t.Run("Images fill the next free slot", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			_, err := svc.AttachImage(ctx, tote.ID, "products/x.jpg")
			require.NoError(t, err)
		}
		_, err := svc.AttachImage(ctx, tote.ID, "products/y.jpg")
		assert.ErrorIs(t, err, catalog.ErrGalleryFull)
	})

	t.Run("Price stats average active products", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, catalog.ProductRequest{CategoryID: category.ID, Name: "Duffel", Price: testutil.Money("2000")})
		require.NoError(t, err)

		stats, err := svc.CategoryPriceStats(ctx, category.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.Products)
		assert.InDelta(t, 1500.0, stats.AveragePrice, 0.001)

		_, err = svc.CategoryPriceStats(ctx, 999)
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})

	t.Run("Delete refuses a category in use", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), catalog.ErrCategoryInUse)

		empty, err := svc.CreateCategory(ctx, catalog.CategoryRequest{Name: "Empty"})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteCategory(ctx, empty.ID))
		assert.ErrorIs(t, svc.DeleteCategory(ctx, empty.ID), catalog.ErrCategoryNotFound)
	})
}
