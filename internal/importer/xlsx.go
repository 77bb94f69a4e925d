// Package importer разбирает XLSX-файлы с прайс-листами поставщиков
// и превращает строки таблицы в товары каталога.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mmeshcher/rosario-store/internal/model"
)

// Row — одна строка таблицы: значения ячеек по заголовку колонки.
type Row map[string]string

// Parse читает первый лист книги XLSX. Первая строка считается заголовком,
// остальные строки возвращаются как Row. Пустые строки пропускаются.
func Parse(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var res []Row
	for _, cells := range rows[1:] {
		row := make(Row, len(header))
		empty := true
		for i, h := range header {
			if h == "" {
				continue
			}
			var v string
			if i < len(cells) {
				v = strings.TrimSpace(cells[i])
			}
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			res = append(res, row)
		}
	}

	return res, nil
}

// первое непустое значение по списку вариантов заголовка
func (r Row) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// parseNumber повторяет поведение parseFloat(...) || 0: мусор и пустые
// ячейки превращаются в ноль, а не в ошибку строки.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// MapProduct собирает товар из строки импорта. Заголовки прайс-листов
// различаются от поставщика к поставщику, поэтому каждое поле ищется по
// нескольким вариантам названия колонки.
func MapProduct(r Row) model.Product {
	return model.Product{
		Codigo:         r.first("CODIGO", "codigo", "Código", "Id"),
		Descripcion:    r.first("DESCRIPCION DEL PRODUCTO", "descripcion", "Descripción", "Nombre"),
		UnidadMedida:   defaultStr(r.first("UNIDAD DE MEDIDA", "unidadMedida", "Unidad"), "1"),
		Iva:            defaultStr(r.first("IVA", "iva"), "0%"),
		PrecioUnitario: parseNumber(r.first("PRECIO UNITARIO", "costoUnitario")),
		PrecioConIva:   parseNumber(r.first("PRECIO UNITARIO + IVA", "precioConIva")),
		PrecioVenta:    parseNumber(r.first("PRECIO DE VENTA", "precioVenta")),
		Proveedor:      r.first("PROVEEDOR", "proveedor", "Proveedor"),
		Categoria:      defaultStr(r.first("CATEGORIA", "categoria", "Categoría"), model.CategoryUnassigned),
	}
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
