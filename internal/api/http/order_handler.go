package http

import (
	"net/http"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/service"
)

type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type confirmOrderRequest struct {
	QuotationID int64 `json:"quotation_id"`
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	var req confirmOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	order, err := h.orders.Confirm(r.Context(), principal, req.QuotationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.orders.Get(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	page, size := pagination(r)
	orders, total, err := h.orders.List(r.Context(), principal, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: orders, Total: total})
}

type pickupRequest struct {
	Note string `json:"note"`
}

func (h *OrderHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req pickupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	order, err := h.orders.MarkPickedUp(r.Context(), principal, id, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type returnRequest struct {
	Items []service.ReturnItemInput `json:"items"`
}

type returnResponse struct {
	Order  *domain.Order  `json:"order"`
	Return *domain.Return `json:"return"`
}

func (h *OrderHandler) Return(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req returnRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	order, ret, err := h.orders.MarkReturned(r.Context(), principal, id, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, returnResponse{Order: order, Return: ret})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.orders.Cancel(r.Context(), principal, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
