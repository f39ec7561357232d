package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is a user's open shopping cart. One cart per user; the cart and its
// items are destroyed exactly once, when checkout completes.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	gorm.Model `json:"-"`
}

// CartItem is one line in a cart: a product, a chosen tier ("package") and
// a quantity. CustomPrice is the unit price frozen at add-to-cart time; once
// set it shields the line from later product price edits.
type CartItem struct {
	ID          string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID      string              `json:"cart_id" gorm:"index;type:varchar(36)"`
	ProductID   string              `json:"product_id" gorm:"type:varchar(36)"`
	Product     Product             `json:"product" gorm:"foreignKey:ProductID"`
	Quantity    int                 `json:"quantity" validate:"gte=1"`
	Package     PriceTier           `json:"package" gorm:"type:varchar(20)"` // may be empty
	CustomPrice decimal.NullDecimal `json:"custom_price" gorm:"type:decimal(10,2)"`
	gorm.Model  `json:"-"`
}

// UnitPrice resolves the price of one unit for this line: the frozen custom
// price if present, else the product's price in the chosen package tier,
// else the product's active-tier price, else zero.
func (ci *CartItem) UnitPrice() decimal.Decimal {
	if ci.CustomPrice.Valid && ci.CustomPrice.Decimal.IsPositive() {
		return ci.CustomPrice.Decimal
	}
	if ci.Package != "" {
		if price, ok := ci.Product.PriceFor(ci.Package); ok {
			return price
		}
	}
	if price, ok := ci.Product.CurrentPrice(); ok {
		return price
	}
	return decimal.Zero
}

// OldUnitPrice resolves the previous price of one unit. Old prices are
// tier-specific only; there is no fallback to the active tier.
func (ci *CartItem) OldUnitPrice() (decimal.Decimal, bool) {
	if ci.Package == "" {
		return decimal.Zero, false
	}
	return ci.Product.OldPriceFor(ci.Package)
}

// Subtotal is the line total at the current unit price.
func (ci *CartItem) Subtotal() decimal.Decimal {
	return ci.UnitPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// OldSubtotal is the line total at the previous unit price, zero when no
// previous price is recorded for the chosen tier.
func (ci *CartItem) OldSubtotal() decimal.Decimal {
	old, ok := ci.OldUnitPrice()
	if !ok {
		return decimal.Zero
	}
	return old.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// DiscountAmount is how much this line saves against the previous price,
// never negative.
func (ci *CartItem) DiscountAmount() decimal.Decimal {
	saving := ci.OldSubtotal().Sub(ci.Subtotal())
	if saving.IsNegative() {
		return decimal.Zero
	}
	return saving
}

// HasDiscount reports whether both unit prices resolve and the current one
// is lower.
func (ci *CartItem) HasDiscount() bool {
	old, ok := ci.OldUnitPrice()
	if !ok {
		return false
	}
	unit := ci.UnitPrice()
	return unit.IsPositive() && unit.LessThan(old)
}

// Total sums item subtotals. Recomputed on every call, zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

// TotalBeforeDiscount sums item subtotals at previous prices.
func (c *Cart) TotalBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].OldSubtotal())
	}
	return total
}

// DiscountTotal is the cart-wide saving against previous prices.
func (c *Cart) DiscountTotal() decimal.Decimal {
	return c.TotalBeforeDiscount().Sub(c.Total())
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}
