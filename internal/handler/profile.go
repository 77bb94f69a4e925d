package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/middleware"
	"github.com/mmeshcher/rosario-store/internal/model"
)

// currentCustomer находит профиль клиента для аутентифицированного запроса.
// При любой ошибке ответ уже записан, вызывающему достаточно выйти.
func (h *Handler) currentCustomer(w http.ResponseWriter, r *http.Request) (*model.Customer, bool) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	c, err := h.service.ResolveCustomer(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, err, "resolve customer error")
		return nil, false
	}

	return c, true
}

type profileResponse struct {
	Email    string           `json:"email"`
	IsAdmin  bool             `json:"isAdmin"`
	Customer customerResponse `json:"customer"`
	Orders   []orderResponse  `json:"orders"`
}

// GetProfile возвращает профиль клиента текущей учётной записи вместе
// с его заказами.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetEmailFromContext(r.Context())

	c, ok := h.currentCustomer(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListCustomerOrders(r.Context(), c.ID)
	if err != nil {
		h.handleServiceError(w, err, "list profile orders error", zap.String("customerID", c.ID))
		return
	}

	resp := profileResponse{
		Email:    email,
		IsAdmin:  h.adminEmail != "" && email == h.adminEmail,
		Customer: toCustomerResponse(c),
		Orders:   make([]orderResponse, 0, len(orders)),
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}
