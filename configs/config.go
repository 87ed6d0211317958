package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port          string
	SessionSecret string
	CORSOrigins   []string

	// db | redis | memory
	CartStore string
	RedisAddr string
	CartTTL   time.Duration

	// expr-lang expression over subtotal and items.
	ShippingFeeRule string

	MediaRoot string
	MediaURL  string

	UPIPayeeName string

	KafkaBrokers []string
	KafkaTopic   string
}

type DBConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
	ContactEmail       string
}

func LoadAppConfig() AppConfig {
	return AppConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		SessionSecret:   getEnvOrDefault("SESSION_SECRET", "change-me"),
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		CartStore:       strings.ToLower(getEnvOrDefault("CART_STORE", "db")),
		RedisAddr:       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		CartTTL:         getDurationOrDefault("CART_TTL", 14*24*time.Hour),
		ShippingFeeRule: getEnvOrDefault("SHIPPING_FEE_RULE", "0"),
		MediaRoot:       getEnvOrDefault("MEDIA_ROOT", "./media"),
		MediaURL:        getEnvOrDefault("MEDIA_URL", "/media"),
		UPIPayeeName:    getEnvOrDefault("UPI_PAYEE_NAME", "Storefront"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      getEnvOrDefault("KAFKA_TOPIC", "storefront.orders"),
	}
}

func LoadDBConfig() DBConfig {
	return DBConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:     getEnvOrDefault("POSTGRES_USER", "test"),
		Password: getEnvOrDefault("POSTGRES_PASSWORD", "test"),
		Name:     getEnvOrDefault("POSTGRES_DB", "test"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		TimeZone: getEnvOrDefault("DB_TIMEZONE", "Asia/Kolkata"),
	}
}

func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),                                              // Default sandbox sender ID
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "ap-south-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		ContactEmail:       getEnvOrDefault("CONTACT_TO_EMAIL", os.Getenv("AWS_SENDER_ADDRESS")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
