package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// CreateProduct сохраняет товар и возвращает сгенерированный идентификатор.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, codigo, descripcion, unidad_medida, iva, precio_unitario,
		                       precio_con_iva, precio_venta, proveedor, categoria, imagen_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, p.Codigo, p.Descripcion, p.UnidadMedida, p.Iva, p.PrecioUnitario,
		p.PrecioConIva, p.PrecioVenta, p.Proveedor, p.Categoria, p.ImagenURL,
	)
	if err != nil {
		return "", fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, codigo, descripcion, unidad_medida, iva, precio_unitario,
		        precio_con_iva, precio_venta, proveedor, categoria, imagen_url
		 FROM products
		 WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Codigo, &p.Descripcion, &p.UnidadMedida, &p.Iva, &p.PrecioUnitario,
		&p.PrecioConIva, &p.PrecioVenta, &p.Proveedor, &p.Categoria, &p.ImagenURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetAllProducts возвращает все товары каталога. Сортировку по коду
// выполняет вызывающая сторона.
func (r *PostgresRepository) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, codigo, descripcion, unidad_medida, iva, precio_unitario,
		        precio_con_iva, precio_venta, proveedor, categoria, imagen_url
		 FROM products`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Codigo, &p.Descripcion, &p.UnidadMedida, &p.Iva, &p.PrecioUnitario,
			&p.PrecioConIva, &p.PrecioVenta, &p.Proveedor, &p.Categoria, &p.ImagenURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateProduct перезаписывает редактируемые поля товара.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET codigo = $2, descripcion = $3, unidad_medida = $4, iva = $5, precio_unitario = $6,
		     precio_con_iva = $7, precio_venta = $8, proveedor = $9, categoria = $10
		 WHERE id = $1`,
		p.ID, p.Codigo, p.Descripcion, p.UnidadMedida, p.Iva, p.PrecioUnitario,
		p.PrecioConIva, p.PrecioVenta, p.Proveedor, p.Categoria,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpdateProductImage выставляет товару ссылку на загруженное изображение.
func (r *PostgresRepository) UpdateProductImage(ctx context.Context, id, url string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE products SET imagen_url = $2 WHERE id = $1`,
		id, url,
	)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет товар из каталога.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
