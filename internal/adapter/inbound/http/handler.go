package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/auth"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/request"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/service"
)

// maxRequestBody bounds decision request documents.
const maxRequestBody = 1 << 20

// Handler serves the decision API.
type Handler struct {
	decisions *service.DecisionService
	apiKeys   *auth.APIKeyService
	metrics   *Metrics
	logger    *slog.Logger
}

// NewHandler wires the decision service into an HTTP handler. apiKeys may
// be nil to disable authentication (local-only deployments).
func NewHandler(decisions *service.DecisionService, apiKeys *auth.APIKeyService, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{decisions: decisions, apiKeys: apiKeys, metrics: metrics, logger: logger}
}

// Routes builds the HTTP mux: the decision endpoint, health, and metrics.
func (h *Handler) Routes(reg prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/decision", h.authenticated(http.HandlerFunc(h.handleDecision)))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return RequestIDMiddleware(h.logger)(MetricsMiddleware(h.metrics)(mux))
}

// handleDecision decodes a request document, evaluates it, and renders the
// response. Evaluation never fails as an HTTP error: only malformed
// documents and auth failures do.
func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req request.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request document: "+err.Error())
		return
	}
	response := h.decisions.Decide(r.Context(), &req)
	writeJSON(w, http.StatusOK, toWireResponse(response))
}

// handleHealth reports liveness. The engine is immutable after boot, so a
// serving process is a healthy process.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// authenticated enforces API-key auth when a key service is configured.
func (h *Handler) authenticated(next http.Handler) http.Handler {
	if h.apiKeys == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := bearerToken(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing api key")
			return
		}
		identity, err := h.apiKeys.Validate(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		LoggerFromContext(r.Context()).Debug("authenticated decision request",
			slog.String("identity", identity.ID))
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return r.Header.Get("X-API-Key")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Wire types render the response document. Values serialize canonically
// with their datatype, mirroring the request value shape.

// WireResponse is the JSON decision response.
type WireResponse struct {
	Results []WireResult `json:"results"`
}

// WireResult is one decision result entry.
type WireResult struct {
	ID          string           `json:"id"`
	Decision    string           `json:"decision"`
	Status      *WireStatus      `json:"status,omitempty"`
	Obligations []WireObligation `json:"obligations,omitempty"`
	Advice      []WireObligation `json:"advice,omitempty"`
	Attributes  []WireAssignment `json:"attributes,omitempty"`
}

// WireStatus renders the status-code chain of an Indeterminate result.
type WireStatus struct {
	Codes   []string `json:"codes"`
	Message string   `json:"message,omitempty"`
}

// WireObligation renders an obligation or advice.
type WireObligation struct {
	ID          string           `json:"id"`
	Assignments []WireAssignment `json:"assignments,omitempty"`
}

// WireAssignment renders one attribute assignment.
type WireAssignment struct {
	AttributeID string `json:"attributeId"`
	Category    string `json:"category,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	DataType    string `json:"dataType"`
	Value       string `json:"value"`
}

func toWireResponse(resp *pdp.Response) WireResponse {
	out := WireResponse{Results: make([]WireResult, 0, len(resp.Results))}
	for _, r := range resp.Results {
		wr := WireResult{
			ID:       r.ID,
			Decision: r.Decision.String(),
		}
		if r.Decision.IsIndeterminate() {
			wr.Status = &WireStatus{Codes: r.Status.Codes, Message: r.Status.Message}
		}
		for _, o := range r.Obligations {
			wr.Obligations = append(wr.Obligations, WireObligation{ID: o.ID, Assignments: toWireAssignments(o.Assignments)})
		}
		for _, a := range r.Advice {
			wr.Advice = append(wr.Advice, WireObligation{ID: a.ID, Assignments: toWireAssignments(a.Assignments)})
		}
		wr.Attributes = toWireAssignments(r.Attributes)
		out.Results = append(out.Results, wr)
	}
	return out
}

func toWireAssignments(assigns []pdp.AttributeAssignment) []WireAssignment {
	out := make([]WireAssignment, 0, len(assigns))
	for _, a := range assigns {
		out = append(out, WireAssignment{
			AttributeID: a.AttributeID,
			Category:    a.Category,
			Issuer:      a.Issuer,
			DataType:    a.Value.Type(),
			Value:       a.Value.Canonical(),
		})
	}
	return out
}
