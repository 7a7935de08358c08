package http

import (
	"net/http"

	"github.com/fedscout/fedscout/internal/ingest"
)

// TriggerIngestion enqueues a feed pull and returns the queued job.
func (h *Handlers) TriggerIngestion(w http.ResponseWriter, r *http.Request) {
	var req IngestionTriggerRequest
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	job, err := h.ingestion.Trigger(r.Context(), ingest.Query{
		NAICSCodes: req.NAICSCodes,
		Limit:      req.Limit,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.metrics.IngestionRuns.WithLabelValues(job.SourceSystem).Inc()
	h.writeJSON(w, http.StatusAccepted, job)
}

// IngestionStatus returns one job's log row.
func (h *Handlers) IngestionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	job, err := h.ingestion.Status(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

// IngestionHistory lists recent jobs.
func (h *Handlers) IngestionHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r)
	history, err := h.ingestion.History(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{Items: history, Limit: limit, Count: len(history)})
}
