package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	config "github.com/Keoroanthony/go-storefront/configs"
	"github.com/Keoroanthony/go-storefront/internal/models"
)

var DB *gorm.DB

func Init() {
	cfg := config.LoadDBConfig()

	dsn := cfg.URL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.TimeZone,
		)
	}

	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {

		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err = Migrate(DB); err != nil {

		log.Fatalf("Failed to migrate DB: %v", err)
	}

	log.Println("Database connected and migrated successfully")
}

// Migrate creates or updates every table the service owns.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.ProductSize{},
		&models.ProductReview{},
		&models.PaymentMethod{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.CartSession{},
	)
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}
