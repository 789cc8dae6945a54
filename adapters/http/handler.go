// Package http provides the REST API for the billing service.
package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cardbill/cardbill/app"
	"github.com/cardbill/cardbill/ports"
)

// Handler provides the REST API endpoints.
type Handler struct {
	billing     *app.BillingService
	billers     ports.BillerStore
	issuers     ports.IssuerStore
	clients     ports.ClientStore
	products    ports.ProductStore
	fees        ports.FeeStore
	mappings    ports.MappingStore
	history     ports.HistoryStore
	interchange ports.InterchangeStore
	invoices    ports.InvoiceStore
	ids         ports.IDGenerator
	clock       ports.Clock
	apiToken    string
	logger      zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Billing     *app.BillingService
	Billers     ports.BillerStore
	Issuers     ports.IssuerStore
	Clients     ports.ClientStore
	Products    ports.ProductStore
	Fees        ports.FeeStore
	Mappings    ports.MappingStore
	History     ports.HistoryStore
	Interchange ports.InterchangeStore
	Invoices    ports.InvoiceStore
	IDGen       ports.IDGenerator
	Clock       ports.Clock

	// APIToken, when non-empty, gates /api/v1 behind a static bearer token.
	APIToken string

	Logger zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		billing:     deps.Billing,
		billers:     deps.Billers,
		issuers:     deps.Issuers,
		clients:     deps.Clients,
		products:    deps.Products,
		fees:        deps.Fees,
		mappings:    deps.Mappings,
		history:     deps.History,
		interchange: deps.Interchange,
		invoices:    deps.Invoices,
		ids:         deps.IDGen,
		clock:       deps.Clock,
		apiToken:    deps.APIToken,
		logger:      deps.Logger,
	}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/billers", h.ListBillers)
		r.Post("/billers", h.CreateBiller)
		r.Get("/billers/{id}", h.GetBiller)
		r.Put("/billers/{id}", h.UpdateBiller)

		r.Get("/issuers", h.ListIssuers)
		r.Post("/issuers", h.CreateIssuer)
		r.Get("/issuers/{id}", h.GetIssuer)
		r.Put("/issuers/{id}", h.UpdateIssuer)
		r.Delete("/issuers/{id}", h.DeleteIssuer)

		r.Get("/clients", h.ListClients)
		r.Post("/clients", h.CreateClient)
		r.Get("/clients/{id}", h.GetClient)
		r.Put("/clients/{id}", h.UpdateClient)
		r.Delete("/clients/{id}", h.DeleteClient)
		r.Get("/clients/{id}/applicable-fees", h.ApplicableFees)
		r.Get("/clients/{id}/fee-history", h.FeeHistory)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Get("/products/{id}", h.GetProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/fees", h.ListFees)
		r.Post("/fees", h.CreateFee)
		r.Get("/fees/{id}", h.GetFee)
		r.Put("/fees/{id}", h.UpdateFee)
		r.Delete("/fees/{id}", h.DeleteFee)

		r.Get("/mappings", h.ListMappings)
		r.Post("/mappings", h.CreateMapping)
		r.Get("/mappings/{id}", h.GetMapping)
		r.Delete("/mappings/{id}", h.DeleteMapping)

		r.Get("/interchange-fees", h.ListInterchangeFees)
		r.Post("/interchange-fees", h.CreateInterchangeFee)

		r.Post("/invoices/generate", h.GenerateInvoice)
		r.Get("/invoices", h.ListInvoices)
		r.Get("/invoices/{id}", h.GetInvoice)
		r.Get("/invoices/{id}/pdf", h.InvoicePDF)
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthMiddleware enforces the static API token when one is configured.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.apiToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == token || subtle.ConstantTimeCompare([]byte(token), []byte(h.apiToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing API token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

const dateLayout = "2006-01-02"

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, errors.New(name + " is required (YYYY-MM-DD)")
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, errors.New(name + " must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

func parseIntQuery(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeServiceError maps service and store errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, "invalid_period", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, app.ErrNoApplicableFees):
		writeError(w, http.StatusUnprocessableEntity, "no_applicable_fees", err.Error())
	case errors.Is(err, app.ErrAlreadyCharged):
		writeError(w, http.StatusConflict, "already_charged", err.Error())
	case errors.Is(err, ports.ErrDuplicate):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, ports.ErrReferenced):
		writeError(w, http.StatusConflict, "still_referenced", err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
