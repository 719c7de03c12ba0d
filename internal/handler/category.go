package handler

import (
	"net/http"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/catalog"
)

type categoryJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListCategories returns all categories, or one page of them when paging
// parameters are present.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		categories []catalog.Category
		err        error
	)

	if r.URL.Query().Has("page") || r.URL.Query().Has("pageSize") {
		page, pErr := pageRequest(r)
		if pErr != nil {
			respondError(w, http.StatusBadRequest, pErr.Error())
			return
		}
		if nErr := page.Normalize(); nErr != nil {
			respondDomainError(w, r, nErr)
			return
		}
		categories, err = h.categories.ListPage(r.Context(), page.Size, page.Offset())
	} else {
		categories, err = h.categories.List(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]categoryJSON, len(categories))
	for i, c := range categories {
		out[i] = categoryJSON{ID: c.ID, Name: c.Name}
	}
	respondJSON(w, http.StatusOK, out)
}

// GetCategory returns a single category by id.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryJSON{ID: c.ID, Name: c.Name})
}

// CreateCategory inserts a new category. Admin only.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !callerIsAdmin(r) {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req categoryJSON
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name required")
		return
	}

	c := catalog.Category{Name: req.Name}
	if err := h.categories.Create(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, categoryJSON{ID: c.ID, Name: c.Name})
}

// UpdateCategory renames an existing category. Admin only.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !callerIsAdmin(r) {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req categoryJSON
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name required")
		return
	}

	c := catalog.Category{ID: id, Name: req.Name}
	if err := h.categories.Update(r.Context(), &c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryJSON{ID: c.ID, Name: c.Name})
}

// DeleteCategory removes a category without products. Admin only.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !callerIsAdmin(r) {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func callerIsAdmin(r *http.Request) bool {
	ident, ok := auth.IdentityFrom(r.Context())
	return ok && ident.HasRole(auth.RoleAdmin)
}
