package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/fedscout/fedscout/internal/application"
	"github.com/fedscout/fedscout/internal/persistence"
	"github.com/fedscout/fedscout/internal/pricing"
	"github.com/fedscout/fedscout/internal/proposal"
	"github.com/fedscout/fedscout/internal/supplychain"
)

// Version is reported by /health.
const Version = "1.0.0"

// Pagination bounds for list endpoints.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handlers holds the endpoint implementations and their dependencies.
type Handlers struct {
	scoring   *application.ScoringService
	ingestion *application.IngestionService
	verifier  *supplychain.Verifier
	pricing   *pricing.Service
	proposals *proposal.Generator
	orgs      persistence.OrganizationRepo
	opps      persistence.OpportunityRepo
	metrics   *MetricsRegistry
	log       zerolog.Logger
}

// NewHandlers wires the endpoint handlers.
func NewHandlers(
	scoring *application.ScoringService,
	ingestion *application.IngestionService,
	verifier *supplychain.Verifier,
	pricingSvc *pricing.Service,
	proposals *proposal.Generator,
	orgs persistence.OrganizationRepo,
	opps persistence.OpportunityRepo,
	metrics *MetricsRegistry,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		scoring:   scoring,
		ingestion: ingestion,
		verifier:  verifier,
		pricing:   pricingSvc,
		proposals: proposals,
		orgs:      orgs,
		opps:      opps,
		metrics:   metrics,
		log:       log,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "fedscout",
		Version:   Version,
		Timestamp: time.Now().UTC(),
	})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// writeDomainError maps repository sentinels onto HTTP statuses.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, persistence.ErrValidation):
		h.writeError(w, r, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, application.ErrBatchTooLarge):
		h.writeError(w, r, http.StatusBadRequest, "batch_too_large", err.Error())
	default:
		h.log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("request failed")
		h.writeError(w, r, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}
	return true
}

func (h *Handlers) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_id", "Path parameter "+name+" is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
