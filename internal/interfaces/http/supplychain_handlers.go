package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/fedscout/fedscout/internal/rules"
	"github.com/fedscout/fedscout/internal/supplychain"
)

// VerifySupplier runs the combined Section 889 and TAA screen.
func (h *Handlers) VerifySupplier(w http.ResponseWriter, r *http.Request) {
	var req VerifySupplierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_supplier_name",
			"supplier_name is required")
		return
	}

	result := h.verifier.VerifySupplier(req.SupplierName, req.SupplierID,
		req.CountryOfOrigin, req.Components)
	h.writeJSON(w, http.StatusOK, result)
}

// CheckSection889 screens a supplier name and components against the
// prohibited entity list.
func (h *Handlers) CheckSection889(w http.ResponseWriter, r *http.Request) {
	var req VerifySupplierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_supplier_name",
			"supplier_name is required")
		return
	}

	result := h.verifier.CheckSection889(req.SupplierName, req.Components)
	h.writeJSON(w, http.StatusOK, result)
}

// CheckTAA screens one country of origin.
func (h *Handlers) CheckTAA(w http.ResponseWriter, r *http.Request) {
	var req TAACheckRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.CountryCode) == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_country_code",
			"country_code is required")
		return
	}

	h.writeJSON(w, http.StatusOK, h.verifier.CheckTAA(req.CountryCode))
}

// BatchCheckTAA screens several countries in one call.
func (h *Handlers) BatchCheckTAA(w http.ResponseWriter, r *http.Request) {
	var req TAABatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.CountryCodes) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "missing_country_codes",
			"country_codes is required")
		return
	}

	results := h.verifier.BatchCheckTAA(req.CountryCodes)
	summary := TAABatchSummary{TotalChecked: len(results)}
	for _, result := range results {
		switch result.Status {
		case supplychain.StatusCompliant:
			summary.Compliant++
		case supplychain.StatusNonCompliant:
			summary.NonCompliant++
		case supplychain.StatusProhibited:
			summary.Prohibited++
		}
	}
	h.writeJSON(w, http.StatusOK, TAABatchResponse{Results: results, Summary: summary})
}

// ListDesignatedCountries returns the TAA designated country table.
func (h *Handlers) ListDesignatedCountries(w http.ResponseWriter, r *http.Request) {
	countries := rules.DesignatedCountries()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"designated_countries": countries,
		"total":                len(countries),
	})
}

// ListProhibitedEntities returns the Section 889 prohibited entity table.
func (h *Handlers) ListProhibitedEntities(w http.ResponseWriter, r *http.Request) {
	table := rules.ProhibitedEntities()
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entities := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		entities = append(entities, map[string]string{"key": key, "name": table[key]})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"prohibited_entities": entities,
		"total":               len(entities),
		"note":                "Includes primary entities and known subsidiaries. Additional verification may be required.",
	})
}
