package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Service configuration constants
const (
	ServiceName    = "order-pricing"
	ServiceVersion = "0.1.0"
)

// OpenTelemetry configuration constants
const (
	TracesPath = "/otlp/v1/traces"
)

// Config holds environment-specific configuration
type Config struct {
	Port     string
	RunLocal bool

	AWSRegion        string
	AWSEndpoint      string
	OrdersTable      string
	IdempotencyTable string
	OrdersQueueURL   string
	MetricsNamespace string

	LowStockThreshold int
	MaxPrice          decimal.Decimal

	DomesticCountry       string
	ShippingDomesticLow   decimal.Decimal
	ShippingDomesticHigh  decimal.Decimal
	ShippingInternational decimal.Decimal
	FreeTierThreshold     decimal.Decimal

	OtelEndpoint   string
	OtelAuthHeader string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		RunLocal:         os.Getenv("RUN_LOCAL") == "true",
		AWSRegion:        getEnvOrDefault("AWS_REGION", "ap-south-1"),
		AWSEndpoint:      os.Getenv("AWS_ENDPOINT"),
		OrdersTable:      os.Getenv("ORDERS_TABLE"),
		IdempotencyTable: os.Getenv("IDEMPOTENCY_TABLE"),
		OrdersQueueURL:   os.Getenv("ORDERS_QUEUE_URL"),
		MetricsNamespace: getEnvOrDefault("METRICS_NAMESPACE", "OrderPricing"),
		DomesticCountry:  strings.ToUpper(getEnvOrDefault("DOMESTIC_COUNTRY", "US")),
		OtelEndpoint:     os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader:   os.Getenv("OTEL_AUTH_HEADER"),
	}

	var err error
	if cfg.LowStockThreshold, err = getEnvInt("LOW_STOCK_THRESHOLD", 50); err != nil {
		return nil, err
	}
	money := []struct {
		dst *decimal.Decimal
		key string
		def string
	}{
		{&cfg.MaxPrice, "MAX_PRICE", "1000.00"},
		{&cfg.ShippingDomesticLow, "SHIPPING_DOMESTIC_LOW", "5.00"},
		{&cfg.ShippingDomesticHigh, "SHIPPING_DOMESTIC_HIGH", "7.50"},
		{&cfg.ShippingInternational, "SHIPPING_INTERNATIONAL", "25.00"},
		{&cfg.FreeTierThreshold, "FREE_TIER_THRESHOLD", "50.00"},
	}
	for _, m := range money {
		if *m.dst, err = getEnvDecimal(m.key, m.def); err != nil {
			return nil, err
		}
	}

	if cfg.LowStockThreshold < 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD cannot be negative")
	}
	if cfg.DomesticCountry == "" {
		return nil, fmt.Errorf("DOMESTIC_COUNTRY cannot be empty")
	}
	return cfg, nil
}

// Persistence reports whether the DynamoDB archive is configured.
func (c *Config) Persistence() bool {
	return c.OrdersTable != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", key, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", key)
	}
	return v, nil
}
