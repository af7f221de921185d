package restaurant

import (
	"time"

	"github.com/shopspring/decimal"

	"tapin/internal/catalog"
	"tapin/internal/pricing"
)

// Restaurant is a venue record as served to the ordering client: the
// raw menu tree, display label map, and the configuration the pricing
// engine needs.
type Restaurant struct {
	ID        string                        `json:"id"`
	Name      string                        `json:"name"`
	Menu      map[string]catalog.MenuRecord `json:"menu"`
	LabelMap  map[string]string             `json:"label_map"`
	Metadata  Metadata                      `json:"metadata"`
	Info      Info                          `json:"info"`
	CreatedAt time.Time                     `json:"created_at"`
}

type Metadata struct {
	PrimaryColor string            `json:"primary_color"`
	TimeZone     string            `json:"time_zone"`
	TipOptions   []decimal.Decimal `json:"tip_options"` // fractions offered at checkout

	TaxRate           decimal.Decimal `json:"tax_rate"`
	ServiceFeeFlat    decimal.Decimal `json:"service_fee_flat"`
	ServiceFeePercent decimal.Decimal `json:"service_fee_percent"`
	CreditBackRate    decimal.Decimal `json:"credit_back_rate"`
}

type Info struct {
	OpeningHours  string `json:"opening_hours"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
}

// PricingConfig projects the metadata into the aggregator's config.
func (r *Restaurant) PricingConfig() pricing.Config {
	return pricing.Config{
		TaxRate:           r.Metadata.TaxRate,
		ServiceFeeFlat:    r.Metadata.ServiceFeeFlat,
		ServiceFeePercent: r.Metadata.ServiceFeePercent,
		CreditBackRate:    r.Metadata.CreditBackRate,
	}
}

// Location resolves the venue's time zone, falling back to UTC for
// malformed records.
func (r *Restaurant) Location() *time.Location {
	loc, err := time.LoadLocation(r.Metadata.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
