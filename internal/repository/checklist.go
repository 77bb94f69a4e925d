package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// GetChecklistItems возвращает пункты списка покупок одной категории, новые первыми.
func (r *PostgresRepository) GetChecklistItems(ctx context.Context, category string) ([]model.ChecklistItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, text, completed, created_at
		 FROM checklist_items
		 WHERE category = $1
		 ORDER BY created_at DESC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("select checklist items: %w", err)
	}
	defer rows.Close()

	var res []model.ChecklistItem
	for rows.Next() {
		var (
			it        model.ChecklistItem
			createdAt *time.Time
		)
		if err := rows.Scan(&it.ID, &it.Category, &it.Text, &it.Completed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		it.CreatedAt = orderTime(createdAt)
		res = append(res, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CreateChecklistItem добавляет пункт в список покупок и возвращает его идентификатор.
func (r *PostgresRepository) CreateChecklistItem(ctx context.Context, category, text string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO checklist_items (id, category, text, completed, created_at)
		 VALUES ($1, $2, $3, false, now())`,
		id, category, text,
	)
	if err != nil {
		return "", fmt.Errorf("create checklist item: %w", err)
	}
	return id, nil
}

// SetChecklistItemCompleted переключает отметку выполнения пункта.
func (r *PostgresRepository) SetChecklistItemCompleted(ctx context.Context, id string, completed bool) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE checklist_items SET completed = $2 WHERE id = $1`,
		id, completed,
	)
	if err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrChecklistItemNotFound
	}
	return nil
}

// DeleteChecklistItem удаляет пункт из списка покупок.
func (r *PostgresRepository) DeleteChecklistItem(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM checklist_items WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete checklist item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrChecklistItemNotFound
	}
	return nil
}
