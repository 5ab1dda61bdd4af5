package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvites/internal/domain"
)

func TestCatalogRepository_ListPlans(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT code, name, base_price_usd, max_regular_guests, max_test_guests\s+FROM plans`).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "base_price_usd", "max_regular_guests", "max_test_guests"}).
			AddRow("BASIC", "Basic", "6.00", 40, 5).
			AddRow("STANDARD", "Standard", "12.00", 120, 10))

	plans, err := NewCatalogRepository(db).ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.True(t, decimal.RequireFromString("6").Equal(plans[0].BasePriceUSD))
	assert.Equal(t, 5, plans[0].MaxGuests(true))
	assert.Equal(t, 120, plans[1].MaxGuests(false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ListCountries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM country_pricing`).
		WillReturnRows(sqlmock.NewRows([]string{"country_code", "currency_code", "exchange_rate", "country_multiplier", "tax_rate", "service_fee"}).
			AddRow("IN", "INR", "83.0", "0.35", "0.18", "10.00"))

	countries, err := NewCatalogRepository(db).ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "INR", countries[0].CurrencyCode)
	assert.True(t, decimal.RequireFromString("0.35").Equal(countries[0].CountryMultiplier))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM templates WHERE id = \$1`).
			WithArgs("basic-floral").
			WillReturnRows(sqlmock.NewRows([]string{"id", "plan_code", "name", "preview_url"}).
				AddRow("basic-floral", "BASIC", "Floral", "https://cdn.example.com/basic-floral.png"))

		tpl, err := NewTemplateRepository(db).GetByID(ctx, "basic-floral")
		require.NoError(t, err)
		assert.Equal(t, "BASIC", tpl.PlanCode)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM templates WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "plan_code", "name", "preview_url"}))

		_, err = NewTemplateRepository(db).GetByID(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}

func TestTemplateRepository_ListByPlan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM templates WHERE plan_code = \$1 ORDER BY name`).
		WithArgs("PREMIUM").
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_code", "name", "preview_url"}).
			AddRow("premium-gold", "PREMIUM", "Gold", "").
			AddRow("premium-noir", "PREMIUM", "Noir", ""))

	templates, err := NewTemplateRepository(db).ListByPlan(context.Background(), "PREMIUM")
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
