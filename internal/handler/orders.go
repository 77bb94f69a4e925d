package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// GetMyOrders возвращает заказы текущего клиента: и выданные в кредит,
// и записи личного списка.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	c, ok := h.currentCustomer(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListCustomerOrders(r.Context(), c.ID)
	if err != nil {
		h.handleServiceError(w, err, "get my orders error", zap.String("customerID", c.ID))
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type orderRequestBody struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// CreateMyOrder добавляет запись в личный список заказов текущего клиента.
func (h *Handler) CreateMyOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.currentCustomer(w, r)
	if !ok {
		return
	}

	var req orderRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.CreateOrderRequest(r.Context(), c.ID, req.Description, model.OrderStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err, "create order request error", zap.String("customerID", c.ID))
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// UpdateMyOrder обновляет запись личного списка текущего клиента.
func (h *Handler) UpdateMyOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.currentCustomer(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "id")

	var req orderRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.service.UpdateOrderRequest(r.Context(), c.ID, orderID, req.Description, model.OrderStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err, "update order request error", zap.String("orderID", orderID))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteMyOrder удаляет запись личного списка текущего клиента.
func (h *Handler) DeleteMyOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := h.currentCustomer(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "id")

	if err := h.service.DeleteOrderRequest(r.Context(), c.ID, orderID); err != nil {
		h.handleServiceError(w, err, "delete order request error", zap.String("orderID", orderID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
