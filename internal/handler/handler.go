// Package handler содержит HTTP-обработчики API сервиса магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/middleware"
	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/repository"
	"github.com/mmeshcher/rosario-store/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterAccount(ctx context.Context, email, password string) (int64, error)
	Authenticate(ctx context.Context, email, password string) (*model.Account, error)
	ResolveCustomer(ctx context.Context, email string) (*model.Customer, error)

	CreateCustomer(ctx context.Context, c *model.Customer) (string, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	AssignOrder(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error)
	ApplyPayment(ctx context.Context, orderID string, payment float64) (*model.Order, error)
	ApplyRebate(ctx context.Context, customerID string, amount float64) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomerOrders(ctx context.Context, customerID string) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error)

	CreateProduct(ctx context.Context, p *model.Product) (string, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ImportProducts(ctx context.Context, products []model.Product) (*service.ImportReport, error)
	AttachProductImage(ctx context.Context, productID string, data []byte, contentType string) (string, error)

	CreateOrderRequest(ctx context.Context, customerID, description string, status model.OrderStatus) (*model.Order, error)
	UpdateOrderRequest(ctx context.Context, customerID, orderID, description string, status model.OrderStatus) error
	DeleteOrderRequest(ctx context.Context, customerID, orderID string) error

	ListChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error)
	AddChecklistItem(ctx context.Context, category, text string) (string, error)
	ToggleChecklistItem(ctx context.Context, category, id string, completed bool) error
	RemoveChecklistItem(ctx context.Context, category, id string) error
	PendingChecklistItems(ctx context.Context) (map[string]int, error)
	SubscribeChecklist(category string, fn func([]model.ChecklistItem)) (*service.ChecklistSubscription, error)
}

// Handler реализует HTTP-обработчики API сервиса магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	adminEmail     string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, adminEmail string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		adminEmail:     adminEmail,
	}
}

// writeJSON сериализует ответ и выставляет статус.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// handleServiceError переводит ошибки бизнес-логики в HTTP-статусы.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrAccountExists),
		errors.Is(err, service.ErrAmbiguousIdentity):
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
	case errors.Is(err, repository.ErrLimitExceeded):
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
	case errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrChecklistItemNotFound),
		errors.Is(err, service.ErrCustomerNotLinked):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию новой учётной записи.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := h.service.RegisterAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err, "register account error", zap.String("email", req.Email))
		return
	}

	h.authMiddleware.SetAuthCookie(w, req.Email)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, account.Email)
	w.WriteHeader(http.StatusOK)
}

// Logout сбрасывает cookie авторизации.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// requireAdmin пропускает дальше только запросы администратора магазина.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := middleware.GetEmailFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if h.adminEmail == "" || email != h.adminEmail {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
