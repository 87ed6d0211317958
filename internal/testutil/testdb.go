// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Keoroanthony/go-storefront/internal/db"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

// OpenDB returns a migrated in-memory SQLite database private to the test.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return testDB
}

func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateCategory(t testing.TB, conn *gorm.DB, slug string) models.Category {
	t.Helper()
	category := models.Category{Name: slug, Slug: slug, IsActive: true}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func CreateProduct(t testing.TB, conn *gorm.DB, category models.Category, slug, price string) models.Product {
	t.Helper()
	product := models.Product{
		CategoryID: category.ID,
		Name:       slug,
		Slug:       slug,
		Price:      Money(price),
		Stock:      10,
		IsActive:   true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func CreateSize(t testing.TB, conn *gorm.DB, product models.Product, label string, sortOrder uint, active bool) models.ProductSize {
	t.Helper()
	size := models.ProductSize{ProductID: product.ID, Label: label, SortOrder: sortOrder, IsActive: active}
	if err := conn.Create(&size).Error; err != nil {
		t.Fatalf("create size: %v", err)
	}
	return size
}

func CreateCustomer(t testing.TB, conn *gorm.DB, email string, staff bool) models.Customer {
	t.Helper()
	customer := models.Customer{Name: "Test Customer", Email: email, Phone: "9999999999", IsStaff: staff}
	if err := conn.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func CreatePaymentMethod(t testing.TB, conn *gorm.DB, name string, kind models.PaymentMethodType) models.PaymentMethod {
	t.Helper()
	method := models.PaymentMethod{Name: name, MethodType: kind, UPIID: "store@upi", IsActive: true}
	if err := conn.Create(&method).Error; err != nil {
		t.Fatalf("create payment method: %v", err)
	}
	return method
}

// CreateOrder inserts a bare order in the given status, bypassing checkout.
func CreateOrder(t testing.TB, conn *gorm.DB, customer models.Customer, code string, status models.OrderStatus, total string) models.Order {
	t.Helper()
	customerID := customer.ID
	order := models.Order{
		CustomerID:    &customerID,
		OrderCode:     code,
		FullName:      customer.Name,
		Phone:         customer.Phone,
		AddressLine1:  "1 Test Street",
		City:          "Pune",
		State:         "MH",
		Pincode:       "411001",
		PaymentMethod: models.PaymentMethodManual,
		Status:        status,
		Subtotal:      Money(total),
		ShippingFee:   decimal.Zero,
		Total:         Money(total),
	}
	if err := conn.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}
