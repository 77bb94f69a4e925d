package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/repository"
)

// CreateCustomer заводит нового клиента кредитной книги. Новый клиент
// начинает с нулевым долгом.
func (s *Service) CreateCustomer(ctx context.Context, c *model.Customer) (string, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "", &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.CreditLimit <= 0 {
		return "", &ValidationError{Field: "creditLimit", Reason: "must be positive"}
	}
	c.CurrentDebt = 0

	return s.repo.CreateCustomer(ctx, c)
}

// GetCustomer возвращает клиента по идентификатору.
func (s *Service) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers возвращает всех клиентов кредитной книги.
func (s *Service) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.repo.GetAllCustomers(ctx)
}

// AssignOrder выдаёт клиенту заказ в кредит. Лимит проверяется по снимку
// клиента на момент чтения; заказ и увеличение долга записываются двумя
// независимыми запросами, без транзакции. При включённом ATOMIC_LEDGER
// операция уходит в транзакционный вариант репозитория.
func (s *Service) AssignOrder(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	if s.atomicLedger {
		return s.repo.AssignOrderTx(ctx, customerID, amount, description)
	}

	c, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if c.CurrentDebt+amount > c.CreditLimit {
		return nil, repository.ErrLimitExceeded
	}

	o := &model.Order{
		UserID:      customerID,
		Amount:      amount,
		Description: description,
		Status:      model.OrderStatusPending,
	}
	id, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	if err := s.repo.UpdateCustomerDebt(ctx, customerID, c.CurrentDebt+amount); err != nil {
		return nil, err
	}

	return o, nil
}

// ApplyPayment применяет платёж к заказу. Оплаченная сумма никогда не
// превышает сумму заказа: избыток платежа отбрасывается, а долг клиента
// уменьшается ровно на фактически зачтённую часть, но не ниже нуля.
func (s *Service) ApplyPayment(ctx context.Context, orderID string, payment float64) (*model.Order, error) {
	if payment <= 0 {
		return nil, &ValidationError{Field: "payment", Reason: "must be positive"}
	}

	if s.atomicLedger {
		return s.repo.ApplyPaymentTx(ctx, orderID, payment)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetCustomer(ctx, o.UserID)
	if err != nil {
		return nil, err
	}

	newPaid := o.PaidAmount + payment
	if newPaid > o.Amount {
		newPaid = o.Amount
	}
	delta := newPaid - o.PaidAmount
	status := model.StatusFor(o.Amount, newPaid)

	if err := s.repo.UpdateOrderPayment(ctx, orderID, newPaid, status); err != nil {
		return nil, err
	}

	newDebt := c.CurrentDebt - delta
	if newDebt < 0 {
		newDebt = 0
	}
	if err := s.repo.UpdateCustomerDebt(ctx, o.UserID, newDebt); err != nil {
		return nil, err
	}

	o.PaidAmount = newPaid
	o.Status = status
	return o, nil
}

// ApplyRebate уменьшает долг клиента без привязки к заказам. После скидки
// сумма неоплаченных заказов может расходиться с текущим долгом — это
// ожидаемое поведение книги.
func (s *Service) ApplyRebate(ctx context.Context, customerID string, amount float64) (*model.Customer, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	c, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	newDebt := c.CurrentDebt - amount
	if newDebt < 0 {
		newDebt = 0
	}

	if err := s.repo.UpdateCustomerDebt(ctx, customerID, newDebt); err != nil {
		return nil, err
	}

	c.CurrentDebt = newDebt
	return c, nil
}

// DeleteCustomer удаляет клиента вместе со всеми его заказами.
// Сначала удаляются заказы, затем сам клиент.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.repo.DeleteOrdersByUser(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCustomer(ctx, id)
}

// ListCustomerOrders возвращает заказы одного клиента, новые первыми.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, customerID)
}

// ListAllOrders возвращает все заказы с именами клиентов для административного
// экрана.
func (s *Service) ListAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error) {
	return s.repo.GetAllOrders(ctx)
}
