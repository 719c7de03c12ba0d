package handler

import (
	"fmt"
	"net/http"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/customer"
)

// maxPictureBytes caps uploaded profile pictures at 5 MiB.
const maxPictureBytes = 5 << 20

type customerJSON struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles,omitempty"`
	PictureURL string   `json:"pictureUrl,omitempty"`
}

func toCustomerJSON(c *customer.Customer) customerJSON {
	roles := make([]string, len(c.Roles))
	for i, r := range c.Roles {
		roles[i] = string(r)
	}
	return customerJSON{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Roles:      roles,
		PictureURL: c.PictureURL,
	}
}

// CreateCustomer registers a new customer. Registration is open; the new
// account always gets the CUSTOMER role.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerJSON
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email required")
		return
	}

	c, err := h.customers.Create(r.Context(), &customer.Customer{
		Name:  req.Name,
		Email: req.Email,
		Roles: []auth.Role{auth.RoleCustomer},
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCustomerJSON(c))
}

// GetCustomer returns a single customer. Admin or the customer themselves.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.customers.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerJSON(c))
}

// GetCustomerByEmail returns the customer owning the given email address.
func (h *Handler) GetCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("value")
	if email == "" {
		respondError(w, http.StatusBadRequest, "value parameter required")
		return
	}

	c, err := h.customers.FindByEmail(r.Context(), email)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerJSON(c))
}

// ListCustomers returns all customers, or one page of them. Admin only.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var (
		customers []customer.Customer
		err       error
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
		customers, err = h.customers.ListPage(r.Context(), page.Size, page.Offset())
	} else {
		customers, err = h.customers.List(r.Context())
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]customerJSON, len(customers))
	for i := range customers {
		out[i] = toCustomerJSON(&customers[i])
	}
	respondJSON(w, http.StatusOK, out)
}

// UpdateCustomer replaces name and email of an existing customer.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req customerJSON
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	c, err := h.customers.Update(r.Context(), &customer.Customer{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerJSON(c))
}

// DeleteCustomer removes a customer without orders. Admin only.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCustomerPicture accepts a PNG or JPEG profile picture, normalizes it
// to JPEG, stores it in the blob store, and records the resulting URL.
func (h *Handler) UploadCustomerPicture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	// Check ownership before touching the blob store: the key is derived
	// from the target id and the stored file is publicly served.
	if err := auth.AuthorizeSelf(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer func() { _ = file.Close() }()

	jpg, err := h.images.ToJPEG(file)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := fmt.Sprintf("cp%d.jpg", id)
	url, err := h.blobs.Put(r.Context(), key, jpg, "image/jpeg")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if err := h.customers.SetPicture(r.Context(), id, url); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"pictureUrl": url})
}
