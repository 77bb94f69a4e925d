package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmeshcher/rosario-store/internal/model"
	"github.com/mmeshcher/rosario-store/internal/validation"
)

// ImportReport — итог пакетного импорта: сколько строк превратилось в товары
// и сколько были отброшены.
type ImportReport struct {
	Created int
	Failed  int
}

// CreateProduct добавляет товар в каталог.
func (s *Service) CreateProduct(ctx context.Context, p *model.Product) (string, error) {
	p.Descripcion = strings.TrimSpace(p.Descripcion)
	if p.Descripcion == "" {
		return "", &ValidationError{Field: "descripcion", Reason: "must not be empty"}
	}
	if p.UnidadMedida == "" {
		p.UnidadMedida = "1"
	}
	if p.Iva == "" {
		p.Iva = "0%"
	}
	if p.Categoria == "" {
		p.Categoria = model.CategoryFallback
	}

	return s.repo.CreateProduct(ctx, p)
}

// ListProducts возвращает каталог, отсортированный по коду товара: числовые
// коды по возрастанию, нечисловые после всех числовых. Неизвестные категории
// при чтении приводятся к категории по умолчанию.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Categoria = model.NormalizeCategory(products[i].Categoria)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return validation.CompareCodigos(products[i].Codigo, products[j].Codigo) < 0
	})

	return products, nil
}

// UpdateProduct перезаписывает редактируемые поля товара. Код, описание и
// категория обязательны.
func (s *Service) UpdateProduct(ctx context.Context, p *model.Product) error {
	p.Descripcion = strings.TrimSpace(p.Descripcion)
	if p.Descripcion == "" {
		return &ValidationError{Field: "descripcion", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Codigo) == "" {
		return &ValidationError{Field: "codigo", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.Categoria) == "" {
		return &ValidationError{Field: "categoria", Reason: "must not be empty"}
	}

	return s.repo.UpdateProduct(ctx, p)
}

// DeleteProduct удаляет товар из каталога.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ImportProducts создаёт товары из строк импорта. Строки независимы:
// сбой одной не останавливает остальные, итог отражается в отчёте.
func (s *Service) ImportProducts(ctx context.Context, products []model.Product) (*ImportReport, error) {
	report := &ImportReport{}
	for i := range products {
		p := products[i]
		if _, err := s.CreateProduct(ctx, &p); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			continue
		}
		report.Created++
	}
	return report, nil
}

// AttachProductImage загружает изображение товара в хранилище файлов и
// привязывает полученную ссылку к товару. Ключ объекта содержит отметку
// времени, поэтому новая загрузка не затирает предыдущий файл; вытесненный
// объект удаляется после привязки новой ссылки.
func (s *Service) AttachProductImage(ctx context.Context, productID string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Field: "image", Reason: "must not be empty"}
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("product-images/%d_%s.jpg", time.Now().UnixMilli(), productID)
	url, err := s.blobs.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	if err := s.repo.UpdateProductImage(ctx, productID, url); err != nil {
		return "", err
	}

	// старый объект больше ни на что не ссылается; неудачная очистка
	// не отменяет уже привязанную новую ссылку
	if oldKey := imageKeyFromURL(p.ImagenURL); oldKey != "" && oldKey != key {
		_ = s.blobs.Delete(ctx, oldKey)
	}

	return url, nil
}

// imageKeyFromURL извлекает ключ объекта из сохранённой ссылки на изображение.
// Для пустых и внешних ссылок возвращает пустую строку.
func imageKeyFromURL(url string) string {
	if i := strings.Index(url, "product-images/"); i >= 0 {
		return url[i:]
	}
	return ""
}
