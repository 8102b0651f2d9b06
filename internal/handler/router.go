package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/pkg/response"
)

type RouterDeps struct {
	Fees    *FeeHandler
	Stats   *StatsHandler
	Auth    *AuthHandler
	Family  *FamilyHandler
	Health  *HealthHandler
	Tokens  TokenValidator
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter wires every route. CORS sits outside the router so preflight
// requests are answered before method matching.
func NewRouter(d RouterDeps) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	// Health check
	if d.Health != nil {
		router.HandleFunc("/health", d.Health.Health).Methods(http.MethodGet)
		router.HandleFunc("/health/ready", d.Health.Ready).Methods(http.MethodGet)
	}
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/admin/login", d.Auth.AdminLogin).Methods(http.MethodPost)
	authRoutes.HandleFunc("/citizen/login", d.Auth.CitizenLogin).Methods(http.MethodPost)

	adminOnly := RequireRole(domain.RoleAdmin)
	citizenOnly := RequireRole(domain.RoleCitizen)

	fees := api.PathPrefix("/fees").Subrouter()
	fees.Use(RequireAuth(d.Tokens))
	fees.Handle("/initialize", adminOnly(http.HandlerFunc(d.Fees.InitializeFees))).Methods(http.MethodPost)
	fees.Handle("/status", adminOnly(http.HandlerFunc(d.Fees.UpdateFeeStatus))).Methods(http.MethodPut)
	fees.Handle("/all", adminOnly(http.HandlerFunc(d.Fees.GetAllFees))).Methods(http.MethodGet)
	fees.Handle("/export", adminOnly(http.HandlerFunc(d.Fees.ExportFees))).Methods(http.MethodGet)
	fees.Handle("/my-fees", citizenOnly(http.HandlerFunc(d.Fees.GetMyFees))).Methods(http.MethodGet)
	// Must stay last: it matches any single segment.
	fees.Handle("/{citizenId}", adminOnly(http.HandlerFunc(d.Fees.GetFees))).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAuth(d.Tokens), adminOnly)
	admin.HandleFunc("/stats", d.Stats.GetStats).Methods(http.MethodGet)

	if d.Family != nil {
		family := api.PathPrefix("/family").Subrouter()
		family.Use(RequireAuth(d.Tokens), citizenOnly)
		family.HandleFunc("", d.Family.AddFamilyMember).Methods(http.MethodPost)
		family.HandleFunc("", d.Family.ListFamilyMembers).Methods(http.MethodGet)
		family.HandleFunc("/{id}", d.Family.DeleteFamilyMember).Methods(http.MethodDelete)
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return response.CORSMiddleware(response.LoggingMiddleware(logger)(router))
}
