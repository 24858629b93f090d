package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/service"
)

type ProductHandler struct {
	products service.ProductService
	stock    service.StockService
}

func NewProductHandler(products service.ProductService, stock service.StockService) *ProductHandler {
	return &ProductHandler{products: products, stock: stock}
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Reason: "invalid id"}
	}
	return id, nil
}

// pagination reads page and page_size with sane defaults.
func pagination(r *http.Request) (int32, int32) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size < 1 || size > 100 {
		size = 20
	}
	return int32(page), int32(size)
}

type pagedResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	var product domain.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, err)
		return
	}
	if err := h.products.Create(r.Context(), principal, &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var product domain.Product
	if err := decodeBody(r, &product); err != nil {
		writeError(w, err)
		return
	}
	product.ID = id
	if err := h.products.Update(r.Context(), principal, &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.products.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)
	products, total, err := h.products.List(r.Context(), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: products, Total: total})
}

type stockResponse struct {
	ProductID int64  `json:"product_id"`
	OnHand    int64  `json:"on_hand"`
	Available *int64 `json:"available,omitempty"`
}

// OnHand reports the product's on-hand quantity. Passing start and end
// (RFC 3339) additionally reports availability over that window, net of
// overlapping reservations.
func (h *ProductHandler) OnHand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	onHand, err := h.stock.OnHand(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := stockResponse{ProductID: id, OnHand: onHand}

	if startRaw, endRaw := r.URL.Query().Get("start"), r.URL.Query().Get("end"); startRaw != "" || endRaw != "" {
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			writeError(w, &domain.ValidationError{Reason: "start must be RFC 3339"})
			return
		}
		end, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			writeError(w, &domain.ValidationError{Reason: "end must be RFC 3339"})
			return
		}
		available, err := h.stock.Available(r.Context(), id, domain.RentalWindow{Start: start, End: end})
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Available = &available
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, size := pagination(r)
	movements, total, err := h.stock.Movements(r.Context(), id, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: movements, Total: total})
}

type adjustStockRequest struct {
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req adjustStockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.stock.Adjust(r.Context(), principal, id, req.Delta, req.Note); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
