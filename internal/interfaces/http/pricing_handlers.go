package http

import (
	"net/http"

	"github.com/google/uuid"
)

// PricingRecommendation builds a price band for one opportunity.
func (h *Handlers) PricingRecommendation(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OpportunityID == uuid.Nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_ids",
			"opportunity_id is required")
		return
	}

	opp, err := h.opps.Get(r.Context(), req.OpportunityID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.pricing.Recommend(opp, req.LaborMix))
}

// ShouldCost builds a bottom-up cost estimate from a labor mix.
func (h *Handlers) ShouldCost(w http.ResponseWriter, r *http.Request) {
	var req ShouldCostRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.LaborMix) == 0 || req.DurationMonths <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "invalid_estimate_inputs",
			"labor_mix and a positive duration_months are required")
		return
	}

	estimate := h.pricing.CalculateShouldCost(req.LaborMix, req.DurationMonths,
		req.OverheadRate, req.ProfitMargin)
	h.writeJSON(w, http.StatusOK, estimate)
}

// LaborRates lists labor rate benchmarks, optionally filtered by
// category keys.
func (h *Handlers) LaborRates(w http.ResponseWriter, r *http.Request) {
	categories := r.URL.Query()["category"]
	rates := h.pricing.ListLaborRates(categories)
	h.writeJSON(w, http.StatusOK, ListResponse{Items: rates, Count: len(rates)})
}

// ContractBenchmarks lists contract value benchmarks, optionally
// filtered by NAICS code.
func (h *Handlers) ContractBenchmarks(w http.ResponseWriter, r *http.Request) {
	codes := r.URL.Query()["naics"]
	benchmarks := h.pricing.ListContractBenchmarks(codes)
	h.writeJSON(w, http.StatusOK, ListResponse{Items: benchmarks, Count: len(benchmarks)})
}
