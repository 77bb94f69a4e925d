package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// CreateAccount создаёт новую учётную запись.
func (r *PostgresRepository) CreateAccount(ctx context.Context, email string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrAccountExists, email)
		}
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

// GetAccountByEmail возвращает учётную запись по email.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`,
		email,
	)

	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &a, nil
}
