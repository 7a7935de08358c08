package http

import (
	"net/http"
	"strings"

	"github.com/fedscout/fedscout/internal/domain"
)

// CreateOrganization registers a contractor profile.
func (h *Handlers) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var org domain.Organization
	if !h.decode(w, r, &org) {
		return
	}
	if strings.TrimSpace(org.Name) == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_name", "name is required")
		return
	}

	if err := h.orgs.Create(r.Context(), &org); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, org)
}

// GetOrganization returns one profile.
func (h *Handlers) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	org, err := h.orgs.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, org)
}

// ListOrganizations pages through profiles.
func (h *Handlers) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	orgs, err := h.orgs.List(r.Context(), limit, offset)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ListResponse{
		Items:  orgs,
		Limit:  limit,
		Offset: offset,
		Count:  len(orgs),
	})
}

// UpdateOrganization replaces one profile.
func (h *Handlers) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var org domain.Organization
	if !h.decode(w, r, &org) {
		return
	}
	org.ID = id

	if err := h.orgs.Update(r.Context(), &org); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, org)
}

// DeleteOrganization removes one profile.
func (h *Handlers) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.orgs.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
