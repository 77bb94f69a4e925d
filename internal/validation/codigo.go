// Package validation содержит функции валидации и сравнения входных данных.
package validation

import (
	"strconv"
	"strings"
)

// CompareCodigos сравнивает коды товаров для сортировки каталога.
// Числовые коды упорядочиваются по значению ("9" раньше "10"), нечисловые
// коды идут после всех числовых и сортируются между собой лексикографически.
func CompareCodigos(a, b string) int {
	na, okA := parseCodigo(a)
	nb, okB := parseCodigo(b)

	switch {
	case okA && okB:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func parseCodigo(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
