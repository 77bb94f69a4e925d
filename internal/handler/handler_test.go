package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/rosario-store/internal/middleware"
	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/repository"
	"github.com/mmeshcher/rosario-store/internal/service"
)

type stubService struct {
	registerErr error

	authAccount *model.Account
	authErr     error

	resolveCustomer *model.Customer
	resolveErr      error

	assignOrder *model.Order
	assignErr   error

	allOrders []model.OrderWithCustomer

	products []model.Product
}

func (s *stubService) RegisterAccount(ctx context.Context, email, password string) (int64, error) {
	return 1, s.registerErr
}

func (s *stubService) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	return s.authAccount, s.authErr
}

func (s *stubService) ResolveCustomer(ctx context.Context, email string) (*model.Customer, error) {
	return s.resolveCustomer, s.resolveErr
}

func (s *stubService) CreateCustomer(ctx context.Context, c *model.Customer) (string, error) {
	return "c1", nil
}

func (s *stubService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.resolveCustomer, s.resolveErr
}

func (s *stubService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}

func (s *stubService) AssignOrder(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error) {
	return s.assignOrder, s.assignErr
}

func (s *stubService) ApplyPayment(ctx context.Context, orderID string, payment float64) (*model.Order, error) {
	return s.assignOrder, s.assignErr
}

func (s *stubService) ApplyRebate(ctx context.Context, customerID string, amount float64) (*model.Customer, error) {
	return s.resolveCustomer, s.resolveErr
}

func (s *stubService) DeleteCustomer(ctx context.Context, id string) error {
	return nil
}

func (s *stubService) ListCustomerOrders(ctx context.Context, customerID string) ([]model.Order, error) {
	return nil, nil
}

func (s *stubService) ListAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error) {
	return s.allOrders, nil
}

func (s *stubService) CreateProduct(ctx context.Context, p *model.Product) (string, error) {
	return "p1", nil
}

func (s *stubService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.products, nil
}

func (s *stubService) UpdateProduct(ctx context.Context, p *model.Product) error {
	return nil
}

func (s *stubService) DeleteProduct(ctx context.Context, id string) error {
	return nil
}

func (s *stubService) ImportProducts(ctx context.Context, products []model.Product) (*service.ImportReport, error) {
	return &service.ImportReport{Created: len(products)}, nil
}

func (s *stubService) AttachProductImage(ctx context.Context, productID string, data []byte, contentType string) (string, error) {
	return "https://bucket/product-images/1_p1.jpg", nil
}

func (s *stubService) CreateOrderRequest(ctx context.Context, customerID, description string, status model.OrderStatus) (*model.Order, error) {
	return &model.Order{ID: "o1", UserID: customerID, Description: description, Status: status}, nil
}

func (s *stubService) UpdateOrderRequest(ctx context.Context, customerID, orderID, description string, status model.OrderStatus) error {
	return nil
}

func (s *stubService) DeleteOrderRequest(ctx context.Context, customerID, orderID string) error {
	return nil
}

func (s *stubService) ListChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error) {
	return nil, nil
}

func (s *stubService) AddChecklistItem(ctx context.Context, category, text string) (string, error) {
	return "item-1", nil
}

func (s *stubService) ToggleChecklistItem(ctx context.Context, category, id string, completed bool) error {
	return nil
}

func (s *stubService) RemoveChecklistItem(ctx context.Context, category, id string) error {
	return nil
}

func (s *stubService) PendingChecklistItems(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

func (s *stubService) SubscribeChecklist(category string, fn func([]model.ChecklistItem)) (*service.ChecklistSubscription, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth, "admin@tienda.com")
}

func authCookie(t *testing.T, h *Handler, email string) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(rec, email)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no auth cookie set")
	}
	return cookies[0]
}

func TestRegister_Success(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(credentialsRequest{
		Email:    "user@mail.com",
		Password: "pass",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if len(res.Cookies()) == 0 {
		t.Fatalf("register must set auth cookie")
	}
}

func TestRegister_DuplicateConflict(t *testing.T) {
	h := newTestHandler(t, &stubService{registerErr: repository.ErrAccountExists})

	body, _ := json.Marshal(credentialsRequest{Email: "user@mail.com", Password: "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Result().StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusConflict)
	}
}

func TestLogin_UnknownAccountUnauthorized(t *testing.T) {
	h := newTestHandler(t, &stubService{authErr: repository.ErrAccountNotFound})

	body, _ := json.Marshal(credentialsRequest{Email: "user@mail.com", Password: "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAdminRoutes_ForbiddenForRegularUser(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil)
	req.AddCookie(authCookie(t, h, "user@mail.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusForbidden)
	}
}

func TestAdminRoutes_AllowedForAdmin(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil)
	req.AddCookie(authCookie(t, h, "admin@tienda.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusOK)
	}
}

func TestAssignOrder_LimitExceeded(t *testing.T) {
	h := newTestHandler(t, &stubService{assignErr: repository.ErrLimitExceeded})
	router := h.SetupRouter()

	body, _ := json.Marshal(assignOrderRequest{Amount: 30, Description: "mercado"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/customers/c1/orders", bytes.NewReader(body))
	req.AddCookie(authCookie(t, h, "admin@tienda.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestGetProfile_AmbiguousIdentityConflict(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveErr: service.ErrAmbiguousIdentity})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(authCookie(t, h, "user@mail.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusConflict)
	}
}

func TestGetProfile_NotLinkedNotFound(t *testing.T) {
	h := newTestHandler(t, &stubService{resolveErr: service.ErrCustomerNotLinked})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.AddCookie(authCookie(t, h, "user@mail.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusNotFound)
	}
}

func TestGetAllOrders_UnknownCustomerName(t *testing.T) {
	h := newTestHandler(t, &stubService{
		allOrders: []model.OrderWithCustomer{
			{Order: model.Order{ID: "o1", UserID: "gone", Amount: 10}, CustomerName: ""},
		},
	})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.AddCookie(authCookie(t, h, "admin@tienda.com"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Desconocido") {
		t.Fatalf("response must name unknown customers, got %s", rec.Body.String())
	}
}

func TestListProducts_RequiresAuth(t *testing.T) {
	h := newTestHandler(t, &stubService{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Result().StatusCode, http.StatusUnauthorized)
	}
}
