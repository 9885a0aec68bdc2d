package checkout

import (
	"github.com/imrishuroy/go-order-pricing/internal/catalog"
	"github.com/imrishuroy/go-order-pricing/internal/config"
	"github.com/imrishuroy/go-order-pricing/internal/inventory"
	"github.com/imrishuroy/go-order-pricing/internal/pricing"
)

// ConfigFromEnv maps the environment configuration onto service parameters.
func ConfigFromEnv(c *config.Config) Config {
	return Config{
		ServiceName: config.ServiceName,
		Pricing: pricing.Options{
			DomesticCountry:   c.DomesticCountry,
			DomesticLowRate:   c.ShippingDomesticLow,
			DomesticHighRate:  c.ShippingDomesticHigh,
			InternationalRate: c.ShippingInternational,
			HighTierThreshold: c.FreeTierThreshold,
		},
		Batch: inventory.BatchOptions{
			LowStockThreshold: c.LowStockThreshold,
			MaxPrice:          c.MaxPrice,
		},
		Tax: catalog.DefaultTaxPolicy(),
	}
}
