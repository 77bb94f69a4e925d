package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/model"
)

type customerRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	CreditLimit float64 `json:"creditLimit"`
}

type customerResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	CreditLimit float64 `json:"creditLimit"`
	CurrentDebt float64 `json:"currentDebt"`
	Available   float64 `json:"available"`
}

func toCustomerResponse(c *model.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CreditLimit: c.CreditLimit,
		CurrentDebt: c.CurrentDebt,
		Available:   c.Available(),
	}
}

type orderResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	PaidAmount  float64 `json:"paidAmount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

func toOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Amount:      o.Amount,
		PaidAmount:  o.PaidAmount,
		Description: o.Description,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

// CreateCustomer заводит нового клиента кредитной книги.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c := &model.Customer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
	}
	id, err := h.service.CreateCustomer(r.Context(), c)
	if err != nil {
		h.handleServiceError(w, err, "create customer error")
		return
	}
	c.ID = id

	h.writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

// ListCustomers возвращает всех клиентов кредитной книги.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list customers error")
		return
	}

	resp := make([]customerResponse, 0, len(customers))
	for i := range customers {
		resp = append(resp, toCustomerResponse(&customers[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetCustomer возвращает одного клиента.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get customer error", zap.String("customerID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// DeleteCustomer удаляет клиента вместе с его заказами.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete customer error", zap.String("customerID", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type assignOrderRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// AssignOrder выдаёт клиенту заказ в кредит.
func (h *Handler) AssignOrder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	var req assignOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.AssignOrder(r.Context(), customerID, req.Amount, req.Description)
	if err != nil {
		h.handleServiceError(w, err, "assign order error", zap.String("customerID", customerID))
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

// ApplyPayment применяет платёж к заказу.
func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.service.ApplyPayment(r.Context(), orderID, req.Amount)
	if err != nil {
		h.handleServiceError(w, err, "apply payment error", zap.String("orderID", orderID))
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ApplyRebate уменьшает долг клиента без привязки к заказам.
func (h *Handler) ApplyRebate(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.ApplyRebate(r.Context(), customerID, req.Amount)
	if err != nil {
		h.handleServiceError(w, err, "apply rebate error", zap.String("customerID", customerID))
		return
	}

	h.writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// GetCustomerOrders возвращает заказы одного клиента.
func (h *Handler) GetCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	orders, err := h.service.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		h.handleServiceError(w, err, "get customer orders error", zap.String("customerID", customerID))
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type adminOrderResponse struct {
	orderResponse
	CustomerName string `json:"customerName"`
}

// GetAllOrders возвращает все заказы с именами клиентов.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all orders error")
		return
	}

	resp := make([]adminOrderResponse, 0, len(orders))
	for i := range orders {
		name := orders[i].CustomerName
		if name == "" {
			// заказ клиента, удалённого из книги
			name = "Desconocido"
		}
		resp = append(resp, adminOrderResponse{
			orderResponse: toOrderResponse(&orders[i].Order),
			CustomerName:  name,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}
