package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/repository"
)

// CreateOrderRequest добавляет запись в личный список заказов клиента.
// Такие записи живут в общей коллекции заказов с нулевой суммой и не
// влияют на долг. Для личного списка допустимы только статусы pending и paid.
func (s *Service) CreateOrderRequest(ctx context.Context, customerID, description string, status model.OrderStatus) (*model.Order, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if status == "" {
		status = model.OrderStatusPending
	}
	if err := validateRequestStatus(status); err != nil {
		return nil, err
	}

	o := &model.Order{
		UserID:      customerID,
		Description: description,
		Status:      status,
	}
	id, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	return o, nil
}

// UpdateOrderRequest обновляет описание и статус записи личного списка.
// Запись должна принадлежать клиенту.
func (s *Service) UpdateOrderRequest(ctx context.Context, customerID, orderID, description string, status model.OrderStatus) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if err := validateRequestStatus(status); err != nil {
		return err
	}

	if err := s.checkOrderOwner(ctx, customerID, orderID); err != nil {
		return err
	}

	return s.repo.UpdateOrderRequest(ctx, orderID, description, status)
}

// DeleteOrderRequest удаляет запись личного списка клиента.
func (s *Service) DeleteOrderRequest(ctx context.Context, customerID, orderID string) error {
	if err := s.checkOrderOwner(ctx, customerID, orderID); err != nil {
		return err
	}
	return s.repo.DeleteOrder(ctx, orderID)
}

func validateRequestStatus(status model.OrderStatus) error {
	switch status {
	case model.OrderStatusPending, model.OrderStatusPaid:
		return nil
	default:
		return &ValidationError{Field: "status", Reason: "must be pending or paid"}
	}
}

// checkOrderOwner проверяет, что заказ принадлежит клиенту. Чужие заказы
// неотличимы от несуществующих.
func (s *Service) checkOrderOwner(ctx context.Context, customerID, orderID string) error {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != customerID {
		return repository.ErrOrderNotFound
	}
	return nil
}
