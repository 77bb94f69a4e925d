// Package service реализует бизнес-логику сервиса магазина: учётные записи,
// кредитную книгу клиентов, каталог товаров, личные списки заказов и списки
// покупок.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// ErrAmbiguousIdentity возвращается, когда по email входа найдено несколько клиентов.
var ErrAmbiguousIdentity = errors.New("multiple customers share this email")

// ValidationError описывает ошибку проверки входных данных.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateAccount(ctx context.Context, email string, passwordHash []byte) (int64, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	CreateCustomer(ctx context.Context, c *model.Customer) (string, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetCustomersByEmail(ctx context.Context, email string) ([]model.Customer, error)
	GetAllCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomerDebt(ctx context.Context, id string, debt float64) error
	DeleteCustomer(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, o *model.Order) (string, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error)
	UpdateOrderPayment(ctx context.Context, id string, paidAmount float64, status model.OrderStatus) error
	UpdateOrderRequest(ctx context.Context, id, description string, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error
	DeleteOrdersByUser(ctx context.Context, userID string) (int64, error)
	AssignOrderTx(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error)
	ApplyPaymentTx(ctx context.Context, orderID string, payment float64) (*model.Order, error)

	CreateProduct(ctx context.Context, p *model.Product) (string, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	UpdateProductImage(ctx context.Context, id, url string) error
	DeleteProduct(ctx context.Context, id string) error

	GetChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error)
	CreateChecklistItem(ctx context.Context, category, text string) (string, error)
	SetChecklistItemCompleted(ctx context.Context, id string, completed bool) error
	DeleteChecklistItem(ctx context.Context, id string) error
}

// BlobStore описывает контракт хранилища файлов для изображений товаров.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service содержит бизнес-логику сервиса магазина.
type Service struct {
	repo  Repository
	blobs BlobStore
	// atomicLedger переключает книгу кредитов на транзакционные записи.
	// По умолчанию заказ и долг пишутся двумя независимыми запросами.
	atomicLedger bool

	checklistHub *checklistHub
}

// NewService создаёт новый сервис с указанным репозиторием и хранилищем файлов.
func NewService(repo Repository, blobs BlobStore, atomicLedger bool) *Service {
	return &Service{
		repo:         repo,
		blobs:        blobs,
		atomicLedger: atomicLedger,
		checklistHub: newChecklistHub(),
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
