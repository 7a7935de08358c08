package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

// SourceManual marks notices entered through the API rather than a feed.
const SourceManual = "manual"

// CreateOpportunity stores a manually entered notice.
func (h *Handlers) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var opp domain.Opportunity
	if !h.decode(w, r, &opp) {
		return
	}
	if strings.TrimSpace(opp.Title) == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_title",
			"title is required")
		return
	}
	if opp.SourceSystem == "" {
		opp.SourceSystem = SourceManual
	}
	if opp.SourceID == "" {
		opp.SourceID = uuid.NewString()
	}

	if _, err := h.opps.Upsert(r.Context(), &opp); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, opp)
}

// UpdateOpportunity replaces a notice's mutable fields. The natural key
// carries over from the stored row.
func (h *Handlers) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	existing, err := h.opps.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var opp domain.Opportunity
	if !h.decode(w, r, &opp) {
		return
	}
	opp.ID = existing.ID
	opp.SourceSystem = existing.SourceSystem
	opp.SourceID = existing.SourceID
	if strings.TrimSpace(opp.Title) == "" {
		opp.Title = existing.Title
	}

	if _, err := h.opps.Upsert(r.Context(), &opp); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, opp)
}

// GetOpportunity returns one notice.
func (h *Handlers) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	opp, err := h.opps.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, opp)
}

// ListOpportunities pages through notices with optional filters.
func (h *Handlers) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	filter := persistence.OpportunityFilter{
		Status:      domain.OpportunityStatus(r.URL.Query().Get("status")),
		NAICSPrefix: r.URL.Query().Get("naics"),
		SetAside:    r.URL.Query().Get("set_aside"),
		State:       r.URL.Query().Get("state"),
		Limit:       limit,
		Offset:      offset,
	}
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		h.writeError(w, r, http.StatusBadRequest, "invalid_status",
			"Unknown opportunity status "+string(filter.Status))
		return
	}

	opps, err := h.opps.List(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{
		Items:  opps,
		Limit:  limit,
		Offset: offset,
		Count:  len(opps),
	})
}

// ListOpportunitiesByNAICS pages through notices under one NAICS
// prefix.
func (h *Handlers) ListOpportunitiesByNAICS(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	filter := persistence.OpportunityFilter{
		NAICSPrefix: mux.Vars(r)["code"],
		Limit:       limit,
		Offset:      offset,
	}

	opps, err := h.opps.List(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{
		Items:  opps,
		Limit:  limit,
		Offset: offset,
		Count:  len(opps),
	})
}

// DeleteOpportunity removes one notice.
func (h *Handlers) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.opps.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
