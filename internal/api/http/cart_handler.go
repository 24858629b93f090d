package http

import (
	"net/http"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/service"
)

type CartHandler struct {
	cart service.CartService
}

func NewCartHandler(cart service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	quote, err := h.cart.Get(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type upsertLineRequest struct {
	ProductID int64                `json:"product_id"`
	Quantity  int32                `json:"quantity"`
	Type      domain.LineType      `json:"type"`
	Window    *domain.RentalWindow `json:"window,omitempty"`
}

func (h *CartHandler) UpsertLine(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	var req upsertLineRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quote, err := h.cart.AddOrUpdateLine(r.Context(), principal, req.ProductID, req.Quantity, req.Type, req.Window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	lineID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	quote, err := h.cart.RemoveLine(r.Context(), principal, lineID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	var req applyCouponRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quote, err := h.cart.ApplyCoupon(r.Context(), principal, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	if err := h.cart.Clear(r.Context(), principal); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
