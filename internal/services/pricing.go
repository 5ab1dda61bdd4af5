package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"eventinvites/internal/domain"
)

// catalog is an immutable snapshot of plans and country pricing.
type catalog struct {
	plans       map[string]domain.Plan
	countries   map[string]domain.CountryPricing
	planList    []domain.Plan
	countryList []domain.CountryPricing
}

// LoadCatalog reads the seeded catalog once. The result never touches storage again.
func LoadCatalog(ctx context.Context, repo domain.CatalogRepository) (domain.PlanCatalog, error) {
	plans, err := repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	countries, err := repo.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return NewCatalog(plans, countries), nil
}

// NewCatalog builds a snapshot from the given rows.
func NewCatalog(plans []domain.Plan, countries []domain.CountryPricing) domain.PlanCatalog {
	c := &catalog{
		plans:       make(map[string]domain.Plan, len(plans)),
		countries:   make(map[string]domain.CountryPricing, len(countries)),
		planList:    append([]domain.Plan(nil), plans...),
		countryList: append([]domain.CountryPricing(nil), countries...),
	}
	for _, p := range plans {
		c.plans[normalizeCode(p.Code)] = p
	}
	for _, cp := range countries {
		c.countries[normalizeCode(cp.CountryCode)] = cp
	}
	return c
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *catalog) Plan(code string) (domain.Plan, error) {
	p, ok := c.plans[normalizeCode(code)]
	if !ok {
		return domain.Plan{}, domain.ErrPlanNotFound
	}
	return p, nil
}

func (c *catalog) Country(code string) (domain.CountryPricing, error) {
	cp, ok := c.countries[normalizeCode(code)]
	if !ok {
		return domain.CountryPricing{}, domain.ErrCountryNotFound
	}
	return cp, nil
}

func (c *catalog) Plans() []domain.Plan {
	return append([]domain.Plan(nil), c.planList...)
}

func (c *catalog) Countries() []domain.CountryPricing {
	return append([]domain.CountryPricing(nil), c.countryList...)
}

type pricingEngine struct {
	catalog domain.PlanCatalog
}

// NewPricingEngine returns a PricingEngine over a catalog snapshot. It is safe for concurrent use.
func NewPricingEngine(catalog domain.PlanCatalog) domain.PricingEngine {
	return &pricingEngine{catalog: catalog}
}

// Quote keeps full precision through every step and rounds only when the breakdown is built.
func (e *pricingEngine) Quote(planCode, countryCode string) (*domain.PriceBreakdown, error) {
	plan, err := e.catalog.Plan(planCode)
	if err != nil {
		return nil, err
	}
	country, err := e.catalog.Country(countryCode)
	if err != nil {
		return nil, err
	}

	localBase := plan.BasePriceUSD.Mul(country.ExchangeRate)
	adjusted := localBase.Mul(country.CountryMultiplier)
	tax := adjusted.Mul(country.TaxRate)
	final := adjusted.Add(tax).Add(country.ServiceFee)

	return &domain.PriceBreakdown{
		PlanCode:          plan.Code,
		PlanName:          plan.Name,
		CountryCode:       country.CountryCode,
		Currency:          country.CurrencyCode,
		BasePriceUSD:      money(plan.BasePriceUSD),
		ExchangeRate:      country.ExchangeRate.InexactFloat64(),
		CountryMultiplier: country.CountryMultiplier.InexactFloat64(),
		TaxRate:           country.TaxRate.InexactFloat64(),
		LocalBase:         money(localBase),
		Adjusted:          money(adjusted),
		Tax:               money(tax),
		ServiceFee:        money(country.ServiceFee),
		Final:             money(final),
	}, nil
}

// money rounds half away from zero to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
