package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/catalog"
	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
)

// errorResponse is the uniform error body of the API.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Code: status, Message: msg})
}

// respondDomainError maps domain errors to HTTP status codes. Resource
// lookups map NotFound to 404; placement input that references missing
// entities maps to 422, matching the order endpoints' contract. Anything
// unmapped is logged and returned as a 500 without leaking detail.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrUnknownPaymentMethod):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrInvalidInstallments),
		errors.Is(err, order.ErrCustomerUnknown):
		respondError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, auth.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, customer.ErrEmailTaken),
		errors.Is(err, customer.ErrHasOrders),
		errors.Is(err, catalog.ErrCategoryInUse):
		respondError(w, http.StatusConflict, err.Error())

	default:
		var (
			iqErr   *order.InvalidQuantityError
			pnfErr  *order.ProductNotFoundError
			pageErr *order.InvalidPageError
		)
		switch {
		case errors.As(err, &iqErr):
			respondError(w, http.StatusUnprocessableEntity, iqErr.Error())
		case errors.As(err, &pnfErr):
			respondError(w, http.StatusUnprocessableEntity, pnfErr.Error())
		case errors.As(err, &pageErr):
			respondError(w, http.StatusBadRequest, pageErr.Error())
		default:
			zctx.From(r.Context()).Error("request failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
	}
}
