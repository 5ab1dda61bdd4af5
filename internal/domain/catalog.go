package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Plan is an immutable catalog entry seeded by migrations.
type Plan struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	BasePriceUSD     decimal.Decimal `json:"base_price_usd"`
	MaxRegularGuests int             `json:"max_regular_guests"`
	MaxTestGuests    int             `json:"max_test_guests"`
}

// MaxGuests returns the capacity of the counter selected by isTest.
func (p Plan) MaxGuests(isTest bool) int {
	if isTest {
		return p.MaxTestGuests
	}
	return p.MaxRegularGuests
}

// CountryPricing holds the per-country price adjustments.
type CountryPricing struct {
	CountryCode       string          `json:"country_code"`
	CurrencyCode      string          `json:"currency_code"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	CountryMultiplier decimal.Decimal `json:"country_multiplier"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	ServiceFee        decimal.Decimal `json:"service_fee"`
}

// Template is an invitation design offered for one plan.
// swagger:model Template
type Template struct {
	ID         string `json:"id"`
	PlanCode   string `json:"plan_code"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
}

// PriceBreakdown is the audit trail of a quote. Every figure is rounded to 2 decimals.
// swagger:model PriceBreakdown
type PriceBreakdown struct {
	PlanCode          string  `json:"plan_code"`
	PlanName          string  `json:"plan_name"`
	CountryCode       string  `json:"country_code"`
	Currency          string  `json:"currency"`
	BasePriceUSD      float64 `json:"base_price_usd"`
	ExchangeRate      float64 `json:"exchange_rate"`
	CountryMultiplier float64 `json:"country_multiplier"`
	TaxRate           float64 `json:"tax_rate"`
	LocalBase         float64 `json:"local_base"`
	Adjusted          float64 `json:"adjusted"`
	Tax               float64 `json:"tax"`
	ServiceFee        float64 `json:"service_fee"`
	Final             float64 `json:"final"`
}

// CatalogRepository reads the seeded reference data.
type CatalogRepository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	ListCountries(ctx context.Context) ([]CountryPricing, error)
}

// TemplateRepository is the template catalog collaborator.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*Template, error)
	ListByPlan(ctx context.Context, planCode string) ([]*Template, error)
}

// PlanCatalog is the in-memory, read-only view of plans and country pricing.
type PlanCatalog interface {
	Plan(code string) (Plan, error)
	Country(code string) (CountryPricing, error)
	Plans() []Plan
	Countries() []CountryPricing
}

// PricingEngine computes quotes. Implementations must be pure.
type PricingEngine interface {
	Quote(planCode, countryCode string) (*PriceBreakdown, error)
}
