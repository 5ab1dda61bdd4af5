package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/domain"
)

// AdmitGuestRequest is the request body for POST /invitations/{slug}/guests.
type AdmitGuestRequest struct {
	GuestName string `json:"guest_name"`
	IsTest    bool   `json:"is_test"`
}

// Validate implements Validator.
func (a AdmitGuestRequest) Validate() []string {
	if strings.TrimSpace(a.GuestName) == "" {
		return []string{"guest_name is required"}
	}
	return nil
}

// PublicInvitationSuccessResponse is the success envelope for GET /invitations/{slug}.
type PublicInvitationSuccessResponse struct {
	Success bool                     `json:"success"`
	Data    *domain.PublicInvitation `json:"data"`
	Error   *helpers.APIError        `json:"error"`
}

// AdmissionSuccessResponse is the success envelope for POST /invitations/{slug}/guests.
type AdmissionSuccessResponse struct {
	Success bool              `json:"success"`
	Data    *domain.Admission `json:"data"`
	Error   *helpers.APIError `json:"error"`
}

// InvitationController serves the unauthenticated guest surface.
type InvitationController struct {
	Logger      *slog.Logger
	Invitations domain.InvitationService
	Admissions  domain.AdmissionService
}

func NewInvitationController(logger *slog.Logger, invitations domain.InvitationService, admissions domain.AdmissionService) *InvitationController {
	return &InvitationController{
		Logger:      logger,
		Invitations: invitations,
		Admissions:  admissions,
	}
}

// GetInvitation godoc
// @Summary Preview a public invitation
// @Description Returns status, expiry and template only. Drafts are not found.
// @Tags invitations
// @Produce json
// @Param slug path string true "Invitation slug"
// @Success 200 {object} controllers.PublicInvitationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{slug} [get]
func (c *InvitationController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Invitations.GetPublicInvitation(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// AdmitGuest godoc
// @Summary Register as a guest
// @Description Admits a guest to an ACTIVE invitation within the plan's capacity and returns the full event detail.
// @Tags invitations
// @Accept json
// @Produce json
// @Param slug path string true "Invitation slug"
// @Param body body AdmitGuestRequest true "Guest"
// @Success 201 {object} controllers.AdmissionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: inactive_invitation or capacity_exceeded"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{slug}/guests [post]
func (c *InvitationController) AdmitGuest(w http.ResponseWriter, r *http.Request) {
	var req AdmitGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	admission, err := c.Admissions.Admit(r.Context(), domain.AdmitInput{
		Slug:      r.PathValue("slug"),
		GuestName: req.GuestName,
		IsTest:    req.IsTest,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, admission)
}
