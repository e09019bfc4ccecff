package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
)

const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"
)

// Config is the process configuration, read once from the environment
// (a .env file is loaded by godotenv/autoload in main).
type Config struct {
	AppAddr string
	GinMode string

	// StorageDriver selects where bookings, jobs, quotes and billings live.
	StorageDriver string
	// CatalogDSN is the MySQL DSN of the reference data. When empty the
	// catalog is read from CatalogSeedFile into memory.
	CatalogDSN      string
	CatalogSeedFile string

	ShopName    string
	Location    *time.Location
	LockTimeout time.Duration

	JWTSecret          string
	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	Payment PaymentConfig
	Tables  TableNames
}

type PaymentConfig struct {
	AccessToken     string
	MockMode        bool
	TestPayerEmail  string
	TestPayerUserID string
}

type TableNames struct {
	Bookings string
	Jobs     string
	Quotes   string
	Billings string
	Payments string
}

func Load() (Config, error) {
	cfg := Config{
		AppAddr:         getenvDefault("APP_ADDR", ":8080"),
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		StorageDriver:   strings.ToLower(getenvDefault("STORAGE_DRIVER", StorageDynamoDB)),
		CatalogDSN:      strings.TrimSpace(os.Getenv("CATALOG_DSN")),
		CatalogSeedFile: strings.TrimSpace(os.Getenv("CATALOG_SEED_FILE")),
		ShopName:        getenvDefault("SHOP_NAME", "Mecanica Booking"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "text"),
		Payment: PaymentConfig{
			AccessToken:     strings.TrimSpace(os.Getenv("MERCADOPAGO_ACCESS_TOKEN")),
			MockMode:        envBool("PAYMENT_GATEWAY_MOCK") || envBool("MERCADOPAGO_MOCK"),
			TestPayerEmail:  strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_EMAIL")),
			TestPayerUserID: strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_USER_ID")),
		},
		Tables: TableNames{
			Bookings: getenvDefault("DYNAMODB_TABLE_BOOKINGS", "bookings"),
			Jobs:     getenvDefault("DYNAMODB_TABLE_JOBS", "jobs"),
			Quotes:   getenvDefault("DYNAMODB_TABLE_QUOTES", "quotes"),
			Billings: getenvDefault("DYNAMODB_TABLE_BILLINGS", "billings"),
			Payments: getenvDefault("DYNAMODB_TABLE_PAYMENTS", "payments"),
		},
	}

	switch cfg.StorageDriver {
	case StorageDynamoDB, StorageMemory:
	default:
		return Config{}, errors.NotValidf("STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	loc, err := time.LoadLocation(getenvDefault("SHOP_TIMEZONE", "Local"))
	if err != nil {
		return Config{}, errors.Annotate(err, "SHOP_TIMEZONE")
	}
	cfg.Location = loc

	cfg.LockTimeout = 2 * time.Second
	if v := strings.TrimSpace(os.Getenv("SCHEDULE_LOCK_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, errors.NotValidf("SCHEDULE_LOCK_TIMEOUT %q", v)
		}
		cfg.LockTimeout = d
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.NotProvisionedf("JWT_SECRET")
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "mock" || v == "yes" || v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
