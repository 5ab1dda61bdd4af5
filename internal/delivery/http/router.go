package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventinvites/internal/delivery/http/controllers"
	"eventinvites/internal/delivery/http/middleware"
	"eventinvites/internal/domain"
)

// RouterDeps bundles what NewRouter wires onto routes.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string

	Health      *controllers.HealthController
	Catalog     *controllers.CatalogController
	Events      *controllers.EventController
	Guests      *controllers.GuestController
	Invitations *controllers.InvitationController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(deps.Verifier, deps.Logger)

	mux.HandleFunc("GET /healthz", deps.Health.Healthz)

	// Catalog (public)
	mux.HandleFunc("GET /catalog/plans", deps.Catalog.ListPlans)
	mux.HandleFunc("GET /catalog/plans/{planCode}/templates", deps.Catalog.ListTemplates)
	mux.HandleFunc("GET /catalog/countries", deps.Catalog.ListCountries)
	mux.HandleFunc("GET /pricing/quote", deps.Catalog.Quote)

	// Owner
	mux.HandleFunc("POST /events", auth(deps.Events.CreateEvent))
	mux.HandleFunc("GET /events/me", auth(deps.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(deps.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(deps.Events.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/payments", auth(deps.Events.RecordPayment))
	mux.HandleFunc("POST /events/{eventID}/activate", auth(deps.Events.ActivateEvent))
	mux.HandleFunc("GET /events/{eventID}/guests", auth(deps.Guests.ListGuests))
	mux.HandleFunc("GET /events/{eventID}/guests/stats", auth(deps.Guests.GuestStats))
	mux.HandleFunc("GET /events/{eventID}/guests/export", auth(deps.Guests.ExportGuests))

	// Guests (public)
	mux.HandleFunc("GET /invitations/{slug}", deps.Invitations.GetInvitation)
	mux.HandleFunc("POST /invitations/{slug}/guests", deps.Invitations.AdmitGuest)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.CORS(deps.AllowedOrigins, middleware.LoggingMiddleware(deps.Logger, mux))
}
