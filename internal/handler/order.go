package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/order"
)

// orderItemJSON is one order line on the wire. Price and discount are
// accepted on input for wire compatibility but always overwritten with
// server-resolved values.
type orderItemJSON struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

type paymentJSON struct {
	Method       string `json:"method"`
	Status       string `json:"status,omitempty"`
	Installments int    `json:"installments,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
}

type placeOrderJSON struct {
	CustomerID int64           `json:"customerId"`
	Items      []orderItemJSON `json:"items"`
	Payment    paymentJSON     `json:"payment"`
}

type orderJSON struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customerId"`
	PlacedAt   time.Time       `json:"placedAt"`
	Payment    paymentJSON     `json:"payment"`
	Items      []orderItemJSON `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

func toOrderJSON(o *order.Order) orderJSON {
	out := orderJSON{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		PlacedAt:   o.PlacedAt,
		Payment: paymentJSON{
			Method:       string(o.Payment.Method),
			Status:       string(o.Payment.Status),
			Installments: o.Payment.Installments,
		},
		Items: make([]orderItemJSON, len(o.Items)),
		Total: o.Total(),
	}
	if !o.Payment.DueDate.IsZero() {
		out.Payment.DueDate = o.Payment.DueDate.Format(time.RFC3339)
	}
	for i, it := range o.Items {
		out.Items[i] = orderItemJSON{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Discount:  it.Discount,
		}
	}
	return out
}

// PlaceOrder assembles and persists a new order from the request body and
// returns the persisted aggregate, including its server-assigned id and
// timestamp.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderJSON
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	assembleReq := order.AssembleRequest{
		CustomerID: req.CustomerID,
		Items:      make([]order.ItemRequest, len(req.Items)),
		Payment: order.PaymentRequest{
			Method:       order.PaymentMethod(req.Payment.Method),
			Installments: req.Payment.Installments,
		},
	}
	for i, it := range req.Items {
		assembleReq.Items[i] = order.ItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Discount:  it.Discount,
		}
	}

	o, err := h.assembler.Assemble(r.Context(), assembleReq, h.now().UTC())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	placed, err := h.placement.Place(r.Context(), o)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderJSON(placed))
}

// GetOrder returns a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.queries.FindByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderJSON(o))
}

// ListMyOrders returns one page of the calling customer's order history.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.queries.PageForCurrentUser(r.Context(), page)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]orderJSON, len(list))
	for i, o := range list {
		out[i] = toOrderJSON(o)
	}
	respondJSON(w, http.StatusOK, out)
}

// pageRequest extracts paging and sorting query parameters. Values are
// validated by PageRequest.Normalize downstream; only syntax is checked here.
func pageRequest(r *http.Request) (order.PageRequest, error) {
	page := order.PageRequest{
		SortBy:    r.URL.Query().Get("sortBy"),
		Direction: r.URL.Query().Get("direction"),
	}

	var err error
	if page.Page, err = queryInt(r, "page", 0); err != nil {
		return page, err
	}
	if page.Size, err = queryInt(r, "pageSize", 0); err != nil {
		return page, err
	}
	return page, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &order.InvalidPageError{Param: name, Reason: "must be an integer"}
	}
	return v, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
