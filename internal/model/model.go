// Package model содержит доменные сущности сервиса магазина.
package model

import "time"

// Account представляет учётную запись для входа в систему.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Customer представляет клиента магазина с кредитным лимитом и текущей задолженностью.
type Customer struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	CreditLimit float64
	CurrentDebt float64
}

// Available возвращает доступный кредит клиента, не ниже нуля.
func (c *Customer) Available() float64 {
	if c.CreditLimit <= c.CurrentDebt {
		return 0
	}
	return c.CreditLimit - c.CurrentDebt
}

// OrderStatus описывает статус оплаты заказа.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusPartiallyPaid OrderStatus = "partially_paid"
	OrderStatusPaid          OrderStatus = "paid"
)

// StatusFor вычисляет статус заказа по сумме и оплаченной части:
// paid при paidAmount >= amount, partially_paid при 0 < paidAmount < amount,
// иначе pending.
func StatusFor(amount, paidAmount float64) OrderStatus {
	switch {
	case amount > 0 && paidAmount >= amount:
		return OrderStatusPaid
	case paidAmount > 0:
		return OrderStatusPartiallyPaid
	default:
		return OrderStatusPending
	}
}

// Order описывает заказ клиента в кредитной книге. Заказы из личного списка
// клиента хранятся в той же коллекции с нулевой суммой и не влияют на долг.
type Order struct {
	ID          string
	UserID      string
	Amount      float64
	PaidAmount  float64
	Description string
	Status      OrderStatus
	CreatedAt   time.Time
}

// OrderWithCustomer дополняет заказ именем клиента для административного списка.
type OrderWithCustomer struct {
	Order
	CustomerName string
}

// Product описывает товар каталога.
type Product struct {
	ID             string
	Codigo         string
	Descripcion    string
	UnidadMedida   string
	Iva            string
	PrecioUnitario float64
	PrecioConIva   float64
	PrecioVenta    float64
	Proveedor      string
	Categoria      string
	ImagenURL      string
}

// ProductCategories — фиксированный набор категорий каталога.
var ProductCategories = []string{
	"carnes-frias",
	"legumbres",
	"frutas-verduras",
	"panes",
	"gaseosas",
	"lacteos",
	"mecatos",
	"medicamentos",
	"aseo-hogar",
	"aseo-personal",
	"bastimentos",
	"enlatados",
	"dulceria",
	"galletas",
	"canasta-familiar",
}

// CategoryFallback присваивается товарам с неизвестной категорией при чтении.
const CategoryFallback = "canasta-familiar"

// CategoryUnassigned присваивается строкам импорта без колонки категории.
const CategoryUnassigned = "sin-categoria"

// NormalizeCategory возвращает категорию из фиксированного набора,
// заменяя неизвестные значения на CategoryFallback.
func NormalizeCategory(c string) string {
	for _, known := range ProductCategories {
		if c == known {
			return c
		}
	}
	return CategoryFallback
}

// ChecklistItem описывает пункт списка покупок внутри одной категории.
type ChecklistItem struct {
	ID        string
	Category  string
	Text      string
	Completed bool
	CreatedAt time.Time
}

// ChecklistCategories — фиксированный набор категорий списков покупок.
var ChecklistCategories = []string{
	"Carnes",
	"Legumbres",
	"Frutas & Verduras",
	"Pan",
	"Gaseosas",
	"Yogur",
	"Mecatos",
	"Medicamentos",
	"Aseo del hogar",
	"Aseo Personal",
	"Bastimento",
	"Enlatados",
	"Carnes frías",
	"Dulces",
	"Canasta",
}

// IsChecklistCategory сообщает, входит ли категория в фиксированный набор.
func IsChecklistCategory(c string) bool {
	for _, known := range ChecklistCategories {
		if c == known {
			return true
		}
	}
	return false
}
