package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// CreateCustomer сохраняет нового клиента и возвращает сгенерированный идентификатор.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c *model.Customer) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO customers (id, name, email, phone, credit_limit, current_debt)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, c.Name, c.Email, c.Phone, c.CreditLimit, c.CurrentDebt,
	)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

// GetCustomer возвращает клиента по идентификатору.
func (r *PostgresRepository) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, credit_limit, current_debt
		 FROM customers
		 WHERE id = $1`,
		id,
	)

	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreditLimit, &c.CurrentDebt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &c, nil
}

// GetCustomersByEmail возвращает всех клиентов с указанным email.
// Политику "ноль/один/много" применяет вызывающая сторона.
func (r *PostgresRepository) GetCustomersByEmail(ctx context.Context, email string) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, credit_limit, current_debt
		 FROM customers
		 WHERE email = $1`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers by email: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// GetAllCustomers возвращает всех клиентов.
func (r *PostgresRepository) GetAllCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, credit_limit, current_debt
		 FROM customers`,
	)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

func scanCustomers(rows pgx.Rows) ([]model.Customer, error) {
	var res []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreditLimit, &c.CurrentDebt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateCustomerDebt выставляет клиенту новое значение задолженности.
// Это частичное обновление одного документа; согласованность с заказами
// обеспечивает вызывающая сторона.
func (r *PostgresRepository) UpdateCustomerDebt(ctx context.Context, id string, debt float64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE customers SET current_debt = $2 WHERE id = $1`,
		id, debt,
	)
	if err != nil {
		return fmt.Errorf("update customer debt: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomer удаляет клиента. Заказы клиента удаляются отдельным вызовом
// DeleteOrdersByUser; между двумя удалениями нет транзакции.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM customers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
