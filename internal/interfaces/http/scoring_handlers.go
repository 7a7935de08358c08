package http

import (
	"net/http"

	"github.com/google/uuid"
)

// CalculateRelevance scores one pair.
func (h *Handlers) CalculateRelevance(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrganizationID == uuid.Nil || req.OpportunityID == uuid.Nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"organization_id and opportunity_id are required")
		return
	}

	score, err := h.scoring.CalculateRelevance(r.Context(), req.OrganizationID, req.OpportunityID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.metrics.ScoresComputed.WithLabelValues("relevance").Inc()
	h.writeJSON(w, http.StatusOK, score)
}

// BatchRelevance scores one organization against many opportunities.
func (h *Handlers) BatchRelevance(w http.ResponseWriter, r *http.Request) {
	var req BatchScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrganizationID == uuid.Nil || len(req.OpportunityIDs) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"organization_id and opportunity_ids are required")
		return
	}

	scores, err := h.scoring.BatchRelevance(r.Context(), req.OrganizationID, req.OpportunityIDs)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.metrics.ScoresComputed.WithLabelValues("relevance_batch").Inc()
	h.writeJSON(w, http.StatusOK, ListResponse{
		Items: scores,
		Limit: len(req.OpportunityIDs),
		Count: len(scores),
	})
}

// AssessRisk runs the six-category assessment for one pair.
func (h *Handlers) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrganizationID == uuid.Nil || req.OpportunityID == uuid.Nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"organization_id and opportunity_id are required")
		return
	}

	assessment, err := h.scoring.AssessRisk(r.Context(), req.OrganizationID, req.OpportunityID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.metrics.ScoresComputed.WithLabelValues("risk").Inc()
	h.writeJSON(w, http.StatusOK, assessment)
}

// PredictWin computes the win probability for one pair.
func (h *Handlers) PredictWin(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrganizationID == uuid.Nil || req.OpportunityID == uuid.Nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"organization_id and opportunity_id are required")
		return
	}

	result, err := h.scoring.PredictWin(r.Context(), req.OrganizationID, req.OpportunityID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.metrics.ScoresComputed.WithLabelValues("win_probability").Inc()
	h.writeJSON(w, http.StatusOK, result)
}

// GenerateProposal drafts proposal sections for one pair.
func (h *Handlers) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	var req ProposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrganizationID == uuid.Nil || req.OpportunityID == uuid.Nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"organization_id and opportunity_id are required")
		return
	}

	org, err := h.orgs.Get(r.Context(), req.OrganizationID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	opp, err := h.opps.Get(r.Context(), req.OpportunityID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	draft, err := h.proposals.Generate(opp, org, req.Sections)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_sections", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, draft)
}
