package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is one of the fixed order lifecycle states. No transition
// graph is enforced; administrators may move an order between any two
// states, and "cancelled" is reachable from all of them.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// StatusSteps is the display-only fulfilment sequence shown on the order
// tracking page. Cancelled orders fall outside it.
var StatusSteps = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// Order is an immutable record of a completed checkout. TotalPrice is fixed
// at creation from the cart total and never re-derived; only Status changes
// afterward. ReferenceCode is assigned once and unique across all orders.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2)"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);default:pending"`
	ReferenceCode string          `json:"reference_code" gorm:"uniqueIndex;type:varchar(30)"`
	gorm.Model    `json:"-"`
}

// ItemCount sums the quantities of all order lines.
func (o *Order) ItemCount() int {
	count := 0
	for i := range o.Items {
		count += o.Items[i].Quantity
	}
	return count
}

// OrderItem snapshots one cart line at order time: quantity, unit price and
// tier are copied so later product edits cannot alter historical orders.
type OrderItem struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string          `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID  string          `json:"product_id" gorm:"type:varchar(36)"`
	Product    Product         `json:"product" gorm:"foreignKey:ProductID"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"` // unit price at order time
	Package    PriceTier       `json:"package" gorm:"type:varchar(20)"`
	gorm.Model `json:"-"`
}

// Subtotal is quantity times the frozen unit price.
func (oi *OrderItem) Subtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
