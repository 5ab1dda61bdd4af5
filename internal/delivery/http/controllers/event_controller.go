package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	PlanCode   string     `json:"plan_code"`
	TemplateID string     `json:"template_id"`
	OwnerEmail string     `json:"owner_email"`
	Title      string     `json:"title"`
	HostNames  string     `json:"host_names"`
	EventDate  *time.Time `json:"event_date"`
	Venue      string     `json:"venue"`
	Message    string     `json:"message"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.PlanCode) == "" {
		errs = append(errs, "plan_code is required")
	}
	if strings.TrimSpace(c.TemplateID) == "" {
		errs = append(errs, "template_id is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.OwnerEmail != "" && !validEmail(c.OwnerEmail) {
		errs = append(errs, "owner_email must be a valid email address")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	TemplateID *string    `json:"template_id"`
	OwnerEmail *string    `json:"owner_email"`
	Title      *string    `json:"title"`
	HostNames  *string    `json:"host_names"`
	EventDate  *time.Time `json:"event_date"`
	Venue      *string    `json:"venue"`
	Message    *string    `json:"message"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.TemplateID != nil && strings.TrimSpace(*u.TemplateID) == "" {
		errs = append(errs, "template_id must not be empty")
	}
	if u.OwnerEmail != nil && *u.OwnerEmail != "" && !validEmail(*u.OwnerEmail) {
		errs = append(errs, "owner_email must be a valid email address")
	}
	return errs
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		TemplateID: u.TemplateID,
		OwnerEmail: u.OwnerEmail,
		Title:      u.Title,
		HostNames:  u.HostNames,
		EventDate:  u.EventDate,
		Venue:      u.Venue,
		Message:    u.Message,
	}
}

// RecordPaymentRequest is the request body for POST /events/{eventID}/payments.
type RecordPaymentRequest struct {
	CountryCode   string `json:"country_code"`
	PaymentMethod string `json:"payment_method"`
	// ForceFailure records a declined attempt.
	ForceFailure bool `json:"force_failure"`
}

// Validate implements Validator.
func (p RecordPaymentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.CountryCode) == "" {
		errs = append(errs, "country_code is required")
	}
	if p.PaymentMethod == "" {
		errs = append(errs, "payment_method is required")
	} else if !domain.PaymentMethod(p.PaymentMethod).Valid() {
		errs = append(errs, "payment_method must be one of card, upi, paypal, bank_transfer")
	}
	return errs
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Success bool              `json:"success"`
	Data    *domain.Event     `json:"data"`
	Error   *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for GET /events/me.
type EventListSuccessResponse struct {
	Success bool              `json:"success"`
	Data    []*domain.Event   `json:"data"`
	Error   *helpers.APIError `json:"error"`
}

// PaymentSuccessResponse is the success envelope for POST /events/{eventID}/payments.
type PaymentSuccessResponse struct {
	Success bool                  `json:"success"`
	Data    *domain.PaymentResult `json:"data"`
	Error   *helpers.APIError     `json:"error"`
}

// EventController serves the owner-facing lifecycle endpoints.
type EventController struct {
	Logger   *slog.Logger
	Events   domain.EventService
	Payments domain.PaymentService
}

func NewEventController(logger *slog.Logger, events domain.EventService, payments domain.PaymentService) *EventController {
	return &EventController{
		Logger:   logger,
		Events:   events,
		Payments: payments,
	}
}

// CreateEvent godoc
// @Summary Create a draft invitation
// @Description Creates a DRAFT event for the authenticated owner. The template must belong to the chosen plan.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event details"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (plan or template)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	event, err := c.Events.CreateEvent(r.Context(), ownerID, domain.CreateEventInput{
		PlanCode:   req.PlanCode,
		TemplateID: req.TemplateID,
		OwnerEmail: req.OwnerEmail,
		Title:      req.Title,
		HostNames:  req.HostNames,
		EventDate:  req.EventDate,
		Venue:      req.Venue,
		Message:    req.Message,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListMyEvents godoc
// @Summary List my invitations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	events, err := c.Events.ListEvents(r.Context(), ownerID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one of my invitations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	event, err := c.Events.GetEvent(r.Context(), r.PathValue("eventID"), ownerID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Edit a draft invitation
// @Description Only DRAFT events can be edited. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	event, err := c.Events.UpdateEvent(r.Context(), r.PathValue("eventID"), ownerID, req.patch())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RecordPayment godoc
// @Summary Pay for a draft invitation
// @Description Quotes the event's plan for the given country and records the attempt. A declined attempt is stored with status FAILED and can be retried.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RecordPaymentRequest true "Payment attempt"
// @Success 201 {object} controllers.PaymentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or country)"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/payments [post]
func (c *EventController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Payments.RecordAttempt(r.Context(), domain.RecordPaymentInput{
		EventID:      r.PathValue("eventID"),
		OwnerID:      ownerID,
		CountryCode:  req.CountryCode,
		Method:       domain.PaymentMethod(req.PaymentMethod),
		ForceFailure: req.ForceFailure,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// ActivateEvent godoc
// @Summary Publish a paid invitation
// @Description Allocates the public slug and starts the validity window. Requires a COMPLETED payment.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 402 {object} helpers.APIResponse "error.code: payment_required"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 503 {object} helpers.APIResponse "error.code: allocation_exhausted"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/activate [post]
func (c *EventController) ActivateEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	event, err := c.Events.ActivateEvent(r.Context(), r.PathValue("eventID"), ownerID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
