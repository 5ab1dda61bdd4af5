package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventinvites/internal/domain"
)

type catalogRepository struct {
	DB *sql.DB
}

// NewCatalogRepository returns a domain.CatalogRepository implemented with Postgres.
func NewCatalogRepository(db *sql.DB) domain.CatalogRepository {
	return &catalogRepository{DB: db}
}

func (r *catalogRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT code, name, base_price_usd, max_regular_guests, max_test_guests
		FROM plans
		ORDER BY base_price_usd, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]domain.Plan, 0)
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.Code, &p.Name, &p.BasePriceUSD, &p.MaxRegularGuests, &p.MaxTestGuests); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *catalogRepository) ListCountries(ctx context.Context) ([]domain.CountryPricing, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT country_code, currency_code, exchange_rate, country_multiplier, tax_rate, service_fee
		FROM country_pricing
		ORDER BY country_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := make([]domain.CountryPricing, 0)
	for rows.Next() {
		var c domain.CountryPricing
		if err := rows.Scan(&c.CountryCode, &c.CurrencyCode, &c.ExchangeRate, &c.CountryMultiplier, &c.TaxRate, &c.ServiceFee); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

type templateRepository struct {
	DB *sql.DB
}

// NewTemplateRepository returns a domain.TemplateRepository implemented with Postgres.
func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{DB: db}
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	t := &domain.Template{}
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id, plan_code, name, preview_url FROM templates WHERE id = $1`, id).
		Scan(&t.ID, &t.PlanCode, &t.Name, &t.PreviewURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *templateRepository) ListByPlan(ctx context.Context, planCode string) ([]*domain.Template, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, plan_code, name, preview_url FROM templates WHERE plan_code = $1 ORDER BY name`, planCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.Template, 0)
	for rows.Next() {
		t := &domain.Template{}
		if err := rows.Scan(&t.ID, &t.PlanCode, &t.Name, &t.PreviewURL); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
