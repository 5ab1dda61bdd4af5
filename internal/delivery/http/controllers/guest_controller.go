package controllers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/domain"
)

// ListGuestsResponse is the data payload for GET /events/{eventID}/guests.
type ListGuestsResponse struct {
	Items      []*domain.Guest        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListGuestsSuccessResponse is the success envelope for GET /events/{eventID}/guests.
type ListGuestsSuccessResponse struct {
	Success bool               `json:"success"`
	Data    ListGuestsResponse `json:"data"`
	Error   *helpers.APIError  `json:"error"`
}

// GuestStatsSuccessResponse is the success envelope for GET /events/{eventID}/guests/stats.
type GuestStatsSuccessResponse struct {
	Success bool               `json:"success"`
	Data    *domain.GuestStats `json:"data"`
	Error   *helpers.APIError  `json:"error"`
}

// GuestController serves the owner's view of admitted guests.
type GuestController struct {
	Logger     *slog.Logger
	Admissions domain.AdmissionService
}

func NewGuestController(logger *slog.Logger, admissions domain.AdmissionService) *GuestController {
	return &GuestController{Logger: logger, Admissions: admissions}
}

// ListGuests godoc
// @Summary List guests of an invitation
// @Description Paginated, oldest first.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListGuestsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	guests, total, err := c.Admissions.ListGuests(r.Context(), r.PathValue("eventID"), ownerID, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListGuestsResponse{
		Items:      guests,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GuestStats godoc
// @Summary Guest counters of an invitation
// @Description Live recount of regular and test guests against the plan limits.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GuestStatsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/stats [get]
func (c *GuestController) GuestStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	stats, err := c.Admissions.Stats(r.Context(), r.PathValue("eventID"), ownerID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ExportGuests godoc
// @Summary Download the guest list as CSV
// @Tags guests
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "guests CSV"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/guests/export [get]
func (c *GuestController) ExportGuests(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := c.Admissions.ExportGuestsCSV(r.Context(), eventID, ownerID, &buf); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="guests-%s.csv"`, eventID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
