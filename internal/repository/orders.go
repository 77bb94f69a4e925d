package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// CreateOrder сохраняет заказ и возвращает сгенерированный идентификатор.
// Долг клиента здесь не изменяется.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, amount, paid_amount, description, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, o.UserID, o.Amount, o.PaidAmount, o.Description, string(o.Status),
	)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, amount, paid_amount, description, status, created_at
		 FROM orders
		 WHERE id = $1`,
		id,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

// GetOrdersByUser возвращает заказы клиента, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, paid_amount, description, status, created_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var res []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetAllOrders возвращает все заказы с именами владельцев, новые первыми.
// Для заказов удалённых клиентов имя остаётся пустым.
func (r *PostgresRepository) GetAllOrders(ctx context.Context) ([]model.OrderWithCustomer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.user_id, o.amount, o.paid_amount, o.description, o.status, o.created_at,
		        COALESCE(c.name, '')
		 FROM orders o
		 LEFT JOIN customers c ON c.id = o.user_id
		 ORDER BY o.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select all orders: %w", err)
	}
	defer rows.Close()

	var res []model.OrderWithCustomer
	for rows.Next() {
		var (
			o         model.Order
			status    string
			createdAt *time.Time
			name      string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Amount, &o.PaidAmount, &o.Description, &status, &createdAt, &name); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		o.CreatedAt = orderTime(createdAt)
		res = append(res, model.OrderWithCustomer{Order: o, CustomerName: name})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateOrderPayment выставляет заказу оплаченную сумму и статус.
func (r *PostgresRepository) UpdateOrderPayment(ctx context.Context, id string, paidAmount float64, status model.OrderStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET paid_amount = $2, status = $3 WHERE id = $1`,
		id, paidAmount, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateOrderRequest обновляет описание и статус заказа из личного списка клиента.
func (r *PostgresRepository) UpdateOrderRequest(ctx context.Context, id, description string, status model.OrderStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET description = $2, status = $3 WHERE id = $1`,
		id, description, string(status),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteOrder удаляет один заказ.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteOrdersByUser удаляет все заказы клиента и возвращает их количество.
func (r *PostgresRepository) DeleteOrdersByUser(ctx context.Context, userID string) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete orders by user: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// AssignOrderTx — транзакционный вариант выдачи заказа в кредит: строка клиента
// блокируется, лимит проверяется по актуальному состоянию, заказ и долг
// записываются атомарно. Используется только при включённом ATOMIC_LEDGER.
func (r *PostgresRepository) AssignOrderTx(ctx context.Context, customerID string, amount float64, description string) (*model.Order, error) {
	var created *model.Order

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var creditLimit, currentDebt float64
		err = tx.QueryRow(ctx,
			`SELECT credit_limit, current_debt FROM customers WHERE id = $1 FOR UPDATE`,
			customerID,
		).Scan(&creditLimit, &currentDebt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("lock customer for update: %w", err)
		}

		if currentDebt+amount > creditLimit {
			return ErrLimitExceeded
		}

		id := uuid.NewString()
		var createdAt *time.Time
		err = tx.QueryRow(ctx,
			`INSERT INTO orders (id, user_id, amount, paid_amount, description, status, created_at)
			 VALUES ($1, $2, $3, 0, $4, $5, now())
			 RETURNING created_at`,
			id, customerID, amount, description, string(model.OrderStatusPending),
		).Scan(&createdAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE customers SET current_debt = $2 WHERE id = $1`,
			customerID, currentDebt+amount,
		)
		if err != nil {
			return fmt.Errorf("update customer debt: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		created = &model.Order{
			ID:          id,
			UserID:      customerID,
			Amount:      amount,
			Description: description,
			Status:      model.OrderStatusPending,
			CreatedAt:   orderTime(createdAt),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ApplyPaymentTx — транзакционный вариант применения платежа: заказ и строка
// клиента блокируются, оплата и уменьшение долга записываются атомарно.
// Используется только при включённом ATOMIC_LEDGER.
func (r *PostgresRepository) ApplyPaymentTx(ctx context.Context, orderID string, payment float64) (*model.Order, error) {
	var updated *model.Order

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		row := tx.QueryRow(ctx,
			`SELECT id, user_id, amount, paid_amount, description, status, created_at
			 FROM orders
			 WHERE id = $1
			 FOR UPDATE`,
			orderID,
		)
		o, err := scanOrder(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order for update: %w", err)
		}

		var currentDebt float64
		err = tx.QueryRow(ctx,
			`SELECT current_debt FROM customers WHERE id = $1 FOR UPDATE`,
			o.UserID,
		).Scan(&currentDebt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("lock customer for update: %w", err)
		}

		newPaid := o.PaidAmount + payment
		if newPaid > o.Amount {
			newPaid = o.Amount
		}
		debtReduction := newPaid - o.PaidAmount
		status := model.StatusFor(o.Amount, newPaid)

		_, err = tx.Exec(ctx,
			`UPDATE orders SET paid_amount = $2, status = $3 WHERE id = $1`,
			orderID, newPaid, string(status),
		)
		if err != nil {
			return fmt.Errorf("update order payment: %w", err)
		}

		newDebt := currentDebt - debtReduction
		if newDebt < 0 {
			newDebt = 0
		}
		_, err = tx.Exec(ctx,
			`UPDATE customers SET current_debt = $2 WHERE id = $1`,
			o.UserID, newDebt,
		)
		if err != nil {
			return fmt.Errorf("update customer debt: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		o.PaidAmount = newPaid
		o.Status = status
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o         model.Order
		status    string
		createdAt *time.Time
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Amount, &o.PaidAmount, &o.Description, &status, &createdAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.CreatedAt = orderTime(createdAt)
	return &o, nil
}

// orderTime приводит отсутствующую отметку времени к нулю эпохи Unix,
// как это делает чтение из документного хранилища.
func orderTime(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0).UTC()
	}
	return *t
}
