package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/repository"
)

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("user@mail.com", "pass")
	b := hashPassword("user@mail.com", "pass")
	c := hashPassword("user@mail.com", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

type stubRepo struct {
	customer    *model.Customer
	customerErr error

	customersByEmail []model.Customer

	order        *model.Order
	orderErr     error
	ordersByUser []model.Order

	createdOrder   *model.Order
	createdOrderID string

	updatedDebtID string
	updatedDebt   float64
	debtUpdated   bool

	updatedPaid    float64
	updatedStatus  model.OrderStatus
	paymentUpdated bool

	deletedOrdersUser string
	deletedCustomerID string

	product         *model.Product
	createdProducts []model.Product
	productErr      error
	imageProductID  string
	imageURL        string

	checklistItems []model.ChecklistItem
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateAccount(ctx context.Context, email string, passwordHash []byte) (int64, error) {
	return 1, nil
}

func (s *stubRepo) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return nil, repository.ErrAccountNotFound
}

func (s *stubRepo) CreateCustomer(ctx context.Context, c *model.Customer) (string, error) {
	return "customer-1", nil
}

func (s *stubRepo) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.customer, s.customerErr
}

func (s *stubRepo) GetCustomersByEmail(ctx context.Context, email string) ([]model.Customer, error) {
	return s.customersByEmail, nil
}

func (s *stubRepo) GetAllCustomers(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}

func (s *stubRepo) UpdateCustomerDebt(ctx context.Context, id string, debt float64) error {
	s.updatedDebtID = id
	s.updatedDebt = debt
	s.debtUpdated = true
	return nil
}

func (s *stubRepo) DeleteCustomer(ctx context.Context, id string) error {
	s.deletedCustomerID = id
	return nil
}

func (s *stubRepo) CreateOrder(ctx context.Context, o *model.Order) (string, error) {
	s.createdOrder = o
	if s.createdOrderID == "" {
		s.createdOrderID = "order-1"
	}
	return s.createdOrderID, nil
}

func (s *stubRepo) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubRepo) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.ordersByUser, nil
}

func (s *stubRepo) GetAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error) {
	return nil, nil
}

func (s *stubRepo) UpdateOrderPayment(ctx context.Context, id string, paidAmount float64, status model.OrderStatus) error {
	s.updatedPaid = paidAmount
	s.updatedStatus = status
	s.paymentUpdated = true
	return nil
}

func (s *stubRepo) UpdateOrderRequest(ctx context.Context, id, description string, status model.OrderStatus) error {
	return nil
}

func (s *stubRepo) DeleteOrder(ctx context.Context, id string) error {
	return nil
}

func (s *stubRepo) DeleteOrdersByUser(ctx context.Context, userID string) (int64, error) {
	s.deletedOrdersUser = userID
	return 2, nil
}

func (s *stubRepo) AssignOrderTx(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error) {
	return nil, errors.New("not implemented in stub")
}

func (s *stubRepo) ApplyPaymentTx(ctx context.Context, orderID string, payment float64) (*model.Order, error) {
	return nil, errors.New("not implemented in stub")
}

func (s *stubRepo) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if s.product == nil {
		return nil, repository.ErrProductNotFound
	}
	return s.product, nil
}

func (s *stubRepo) CreateProduct(ctx context.Context, p *model.Product) (string, error) {
	if s.productErr != nil {
		return "", s.productErr
	}
	s.createdProducts = append(s.createdProducts, *p)
	return "product-1", nil
}

func (s *stubRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return nil, nil
}

func (s *stubRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	return nil
}

func (s *stubRepo) UpdateProductImage(ctx context.Context, id, url string) error {
	s.imageProductID = id
	s.imageURL = url
	return nil
}

func (s *stubRepo) DeleteProduct(ctx context.Context, id string) error {
	return nil
}

func (s *stubRepo) GetChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error) {
	return s.checklistItems, nil
}

func (s *stubRepo) CreateChecklistItem(ctx context.Context, category, text string) (string, error) {
	return "item-1", nil
}

func (s *stubRepo) SetChecklistItemCompleted(ctx context.Context, id string, completed bool) error {
	return nil
}

func (s *stubRepo) DeleteChecklistItem(ctx context.Context, id string) error {
	return nil
}

type stubBlob struct {
	key         string
	contentType string
	url         string
	deletedKey  string
}

func (b *stubBlob) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.key = key
	b.contentType = contentType
	if b.url == "" {
		b.url = "https://bucket/" + key
	}
	return b.url, nil
}

func (b *stubBlob) Delete(ctx context.Context, key string) error {
	b.deletedKey = key
	return nil
}

func TestAssignOrder_RejectsOverLimit(t *testing.T) {
	repo := &stubRepo{
		customer: &model.Customer{ID: "c1", CreditLimit: 100, CurrentDebt: 80},
	}
	svc := NewService(repo, nil, false)

	_, err := svc.AssignOrder(context.Background(), "c1", 30, "mercado")
	if !errors.Is(err, repository.ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatalf("order must not be created when limit is exceeded")
	}
	if repo.debtUpdated {
		t.Fatalf("debt must not change when limit is exceeded")
	}
}

func TestAssignOrder_ExactLimitAllowed(t *testing.T) {
	repo := &stubRepo{
		customer: &model.Customer{ID: "c1", CreditLimit: 100, CurrentDebt: 80},
	}
	svc := NewService(repo, nil, false)

	o, err := svc.AssignOrder(context.Background(), "c1", 20, "mercado")
	if err != nil {
		t.Fatalf("AssignOrder error: %v", err)
	}
	if o.Status != model.OrderStatusPending {
		t.Fatalf("new order status = %s, want pending", o.Status)
	}
	if repo.updatedDebt != 100 {
		t.Fatalf("debt = %v, want 100", repo.updatedDebt)
	}
}

func TestAssignOrder_RejectsBlankDescription(t *testing.T) {
	repo := &stubRepo{
		customer: &model.Customer{ID: "c1", CreditLimit: 100, CurrentDebt: 10},
	}
	svc := NewService(repo, nil, false)

	var ve *ValidationError
	_, err := svc.AssignOrder(context.Background(), "c1", 10, "   ")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank description, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatalf("order must not be created without a description")
	}
	if repo.debtUpdated {
		t.Fatalf("debt must not change without a description")
	}
}

func TestApplyPayment_CapsAtOrderAmount(t *testing.T) {
	repo := &stubRepo{
		order:    &model.Order{ID: "o1", UserID: "c1", Amount: 100, PaidAmount: 90},
		customer: &model.Customer{ID: "c1", CreditLimit: 200, CurrentDebt: 50},
	}
	svc := NewService(repo, nil, false)

	o, err := svc.ApplyPayment(context.Background(), "o1", 30)
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}

	if o.PaidAmount != 100 {
		t.Fatalf("paidAmount = %v, want 100", o.PaidAmount)
	}
	if o.Status != model.OrderStatusPaid {
		t.Fatalf("status = %s, want paid", o.Status)
	}
	// долг уменьшается на фактически зачтённые 10, а не на платёж 30
	if repo.updatedDebt != 40 {
		t.Fatalf("debt = %v, want 40", repo.updatedDebt)
	}
}

func TestApplyPayment_PartialKeepsStatus(t *testing.T) {
	repo := &stubRepo{
		order:    &model.Order{ID: "o1", UserID: "c1", Amount: 100, PaidAmount: 0},
		customer: &model.Customer{ID: "c1", CreditLimit: 200, CurrentDebt: 100},
	}
	svc := NewService(repo, nil, false)

	o, err := svc.ApplyPayment(context.Background(), "o1", 40)
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}

	if o.PaidAmount != 40 {
		t.Fatalf("paidAmount = %v, want 40", o.PaidAmount)
	}
	if o.Status != model.OrderStatusPartiallyPaid {
		t.Fatalf("status = %s, want partially_paid", o.Status)
	}
	if repo.updatedDebt != 60 {
		t.Fatalf("debt = %v, want 60", repo.updatedDebt)
	}
}

func TestApplyPayment_DebtNeverNegative(t *testing.T) {
	repo := &stubRepo{
		order:    &model.Order{ID: "o1", UserID: "c1", Amount: 100, PaidAmount: 0},
		customer: &model.Customer{ID: "c1", CreditLimit: 200, CurrentDebt: 30},
	}
	svc := NewService(repo, nil, false)

	if _, err := svc.ApplyPayment(context.Background(), "o1", 100); err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}

	if repo.updatedDebt != 0 {
		t.Fatalf("debt = %v, want 0", repo.updatedDebt)
	}
}

func TestApplyRebate_ClampsAtZero(t *testing.T) {
	repo := &stubRepo{
		customer: &model.Customer{ID: "c1", CreditLimit: 200, CurrentDebt: 25},
	}
	svc := NewService(repo, nil, false)

	c, err := svc.ApplyRebate(context.Background(), "c1", 40)
	if err != nil {
		t.Fatalf("ApplyRebate error: %v", err)
	}
	if c.CurrentDebt != 0 {
		t.Fatalf("debt = %v, want 0", c.CurrentDebt)
	}
}

func TestApplyRebate_DebtDivergesFromOrderSum(t *testing.T) {
	repo := &stubRepo{
		customer: &model.Customer{ID: "c1", CreditLimit: 200, CurrentDebt: 70},
		ordersByUser: []model.Order{
			{ID: "o1", UserID: "c1", Amount: 50, Status: model.OrderStatusPending},
			{ID: "o2", UserID: "c1", Amount: 20, Status: model.OrderStatusPending},
		},
	}
	svc := NewService(repo, nil, false)

	c, err := svc.ApplyRebate(context.Background(), "c1", 30)
	if err != nil {
		t.Fatalf("ApplyRebate error: %v", err)
	}
	if c.CurrentDebt != 40 {
		t.Fatalf("debt = %v, want 40", c.CurrentDebt)
	}

	// заказы скидка не трогает: их неоплаченная сумма теперь больше долга
	if repo.paymentUpdated {
		t.Fatalf("rebate must not touch order records")
	}
	orders, err := svc.ListCustomerOrders(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ListCustomerOrders error: %v", err)
	}
	var outstanding float64
	for _, o := range orders {
		outstanding += o.Amount - o.PaidAmount
	}
	if outstanding <= c.CurrentDebt {
		t.Fatalf("outstanding order sum = %v, debt = %v: sum must exceed debt after rebate", outstanding, c.CurrentDebt)
	}
}

func TestApplyRebate_RejectsNonPositive(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, false)

	var ve *ValidationError
	_, err := svc.ApplyRebate(context.Background(), "c1", 0)
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeleteCustomer_CascadesOrders(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, false)

	if err := svc.DeleteCustomer(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteCustomer error: %v", err)
	}

	if repo.deletedOrdersUser != "c1" {
		t.Fatalf("orders of %q must be deleted, got %q", "c1", repo.deletedOrdersUser)
	}
	if repo.deletedCustomerID != "c1" {
		t.Fatalf("customer %q must be deleted, got %q", "c1", repo.deletedCustomerID)
	}
}

func TestResolveCustomer(t *testing.T) {
	tests := []struct {
		name      string
		customers []model.Customer
		wantErr   error
	}{
		{name: "none", customers: nil, wantErr: ErrCustomerNotLinked},
		{name: "one", customers: []model.Customer{{ID: "c1"}}},
		{name: "many", customers: []model.Customer{{ID: "c1"}, {ID: "c2"}}, wantErr: ErrAmbiguousIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{customersByEmail: tt.customers}
			svc := NewService(repo, nil, false)

			c, err := svc.ResolveCustomer(context.Background(), "user@mail.com")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCustomer error: %v", err)
			}
			if c.ID != "c1" {
				t.Fatalf("customer ID = %q, want c1", c.ID)
			}
		})
	}
}

func TestUpdateOrderRequest_ForeignOrderLooksMissing(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{ID: "o1", UserID: "other"},
	}
	svc := NewService(repo, nil, false)

	err := svc.UpdateOrderRequest(context.Background(), "c1", "o1", "pan", model.OrderStatusPending)
	if !errors.Is(err, repository.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
}

func TestImportProducts_RowsIndependent(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, false)

	products := []model.Product{
		{Descripcion: "Arroz", Codigo: "1"},
		{Descripcion: ""},
		{Descripcion: "Panela", Codigo: "2"},
	}

	report, err := svc.ImportProducts(context.Background(), products)
	if err != nil {
		t.Fatalf("ImportProducts error: %v", err)
	}

	if report.Created != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v, want 2 created and 1 failed", report)
	}
	if len(repo.createdProducts) != 2 {
		t.Fatalf("created %d products, want 2", len(repo.createdProducts))
	}
}

func TestAttachProductImage_KeyFormat(t *testing.T) {
	repo := &stubRepo{product: &model.Product{ID: "p1", Descripcion: "Arroz"}}
	blobs := &stubBlob{}
	svc := NewService(repo, blobs, false)

	url, err := svc.AttachProductImage(context.Background(), "p1", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("AttachProductImage error: %v", err)
	}

	if !strings.HasPrefix(blobs.key, "product-images/") {
		t.Fatalf("key = %q, want product-images/ prefix", blobs.key)
	}
	if !strings.HasSuffix(blobs.key, "_p1.jpg") {
		t.Fatalf("key = %q, want _p1.jpg suffix", blobs.key)
	}
	if repo.imageProductID != "p1" || repo.imageURL != url {
		t.Fatalf("image url must be attached to the product, got %q / %q", repo.imageProductID, repo.imageURL)
	}
}

func TestAttachProductImage_DeletesReplacedObject(t *testing.T) {
	repo := &stubRepo{product: &model.Product{
		ID:        "p1",
		ImagenURL: "https://bucket/product-images/111_p1.jpg",
	}}
	blobs := &stubBlob{}
	svc := NewService(repo, blobs, false)

	if _, err := svc.AttachProductImage(context.Background(), "p1", []byte("jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("AttachProductImage error: %v", err)
	}

	if blobs.deletedKey != "product-images/111_p1.jpg" {
		t.Fatalf("deleted key = %q, want the replaced object key", blobs.deletedKey)
	}
}

func TestAttachProductImage_NoDeleteWithoutPreviousImage(t *testing.T) {
	repo := &stubRepo{product: &model.Product{ID: "p1"}}
	blobs := &stubBlob{}
	svc := NewService(repo, blobs, false)

	if _, err := svc.AttachProductImage(context.Background(), "p1", []byte("jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("AttachProductImage error: %v", err)
	}

	if blobs.deletedKey != "" {
		t.Fatalf("no object must be deleted for a product without an image, got %q", blobs.deletedKey)
	}
}
