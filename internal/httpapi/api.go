package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"pennybook.org/api/spec"
	"pennybook.org/internal/auth"
	"pennybook.org/internal/ledger"
	"pennybook.org/internal/obs"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// ReadyProbe checks downstream readiness (e.g., DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	router     *mux.Router
	auth       *auth.Service
	ledger     *ledger.Service
	readyProbe ReadyProbe
	version    string
}

// New wires routes for the credential and transaction endpoints.
func New(authSvc *auth.Service, ledgerSvc *ledger.Service, rp ReadyProbe, version string) *API {
	a := &API{
		router:     mux.NewRouter(),
		auth:       authSvc,
		ledger:     ledgerSvc,
		readyProbe: rp,
		version:    version,
	}

	r := a.router
	r.HandleFunc("/api/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/forgot-password", a.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/reset-password/{token}", a.handleResetPassword).Methods(http.MethodPost)

	// Everything under /api/transactions sits behind the bearer-token gate.
	protected := r.PathPrefix("/api/transactions").Subrouter()
	protected.Use(a.withAuth)
	protected.HandleFunc("", a.handleCreateTransaction).Methods(http.MethodPost)
	protected.HandleFunc("", a.handleListTransactions).Methods(http.MethodGet)
	protected.HandleFunc("/{id}", a.handleDeleteTransaction).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", a.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.Ready).Methods(http.MethodGet)
	r.HandleFunc("/v1/info", a.Info).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", a.OpenAPISpec).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.router)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = SecurityHeaders(h)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = RateLimit(h, 20, 10)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- service endpoints ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pennybook-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "pennybook-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}
