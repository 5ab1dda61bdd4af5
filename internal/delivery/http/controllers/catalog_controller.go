package controllers

import (
	"log/slog"
	"net/http"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/domain"
)

// QuoteSuccessResponse is the success envelope for GET /pricing/quote.
type QuoteSuccessResponse struct {
	Success bool                   `json:"success"`
	Data    *domain.PriceBreakdown `json:"data"`
	Error   *helpers.APIError      `json:"error"`
}

// CatalogController exposes the read-only plan and pricing catalog.
type CatalogController struct {
	Logger    *slog.Logger
	Catalog   domain.PlanCatalog
	Pricing   domain.PricingEngine
	Templates domain.TemplateRepository
}

func NewCatalogController(logger *slog.Logger, catalog domain.PlanCatalog, pricing domain.PricingEngine, templates domain.TemplateRepository) *CatalogController {
	return &CatalogController{
		Logger:    logger,
		Catalog:   catalog,
		Pricing:   pricing,
		Templates: templates,
	}
}

// ListPlans godoc
// @Summary List plans
// @Tags catalog
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of plans"
// @Router /catalog/plans [get]
func (c *CatalogController) ListPlans(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Catalog.Plans())
}

// ListCountries godoc
// @Summary List supported countries and their pricing adjustments
// @Tags catalog
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of country pricing rows"
// @Router /catalog/countries [get]
func (c *CatalogController) ListCountries(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Catalog.Countries())
}

// ListTemplates godoc
// @Summary List the templates offered for a plan
// @Tags catalog
// @Produce json
// @Param planCode path string true "Plan code"
// @Success 200 {object} helpers.APIResponse "data is an array of templates"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /catalog/plans/{planCode}/templates [get]
func (c *CatalogController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	plan, err := c.Catalog.Plan(r.PathValue("planCode"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	templates, err := c.Templates.ListByPlan(r.Context(), plan.Code)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if templates == nil {
		templates = []*domain.Template{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, templates)
}

// Quote godoc
// @Summary Price a plan for a country
// @Tags catalog
// @Produce json
// @Param plan query string true "Plan code"
// @Param country query string true "ISO country code"
// @Success 200 {object} controllers.QuoteSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (plan or country)"
// @Router /pricing/quote [get]
func (c *CatalogController) Quote(w http.ResponseWriter, r *http.Request) {
	plan := r.URL.Query().Get("plan")
	country := r.URL.Query().Get("country")
	if plan == "" || country == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "plan and country query parameters are required")
		return
	}
	quote, err := c.Pricing.Quote(plan, country)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, quote)
}
