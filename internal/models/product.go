package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceTier identifies one of the selling units a product can be priced in.
type PriceTier string

const (
	TierPerUnit PriceTier = "per_unit"
	TierPerBag  PriceTier = "per_bag"
	TierPerTub  PriceTier = "per_tub"
	TierPerPack PriceTier = "per_pack"
)

// PriceTiers lists every selling unit a product may be priced in.
var PriceTiers = []PriceTier{TierPerUnit, TierPerBag, TierPerTub, TierPerPack}

// Valid reports whether t is one of the known tiers.
func (t PriceTier) Valid() bool {
	for _, tier := range PriceTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// TierPrice holds the current and previous price of a product in one tier.
// A product has at most one row per tier; a missing row (or a zero price)
// means the product is not sold in that tier.
type TierPrice struct {
	ID        uint                `json:"-" gorm:"primaryKey"`
	ProductID string              `json:"-" gorm:"type:varchar(36);uniqueIndex:idx_product_tier"`
	Tier      PriceTier           `json:"tier" gorm:"type:varchar(20);uniqueIndex:idx_product_tier"`
	Price     decimal.Decimal     `json:"price" gorm:"type:decimal(10,2)"`
	OldPrice  decimal.NullDecimal `json:"old_price" gorm:"type:decimal(10,2)"`
}

// Product represents a product in the store. Prices are kept per tier; the
// active tier selects which pair drives the displayed price and the discount.
type Product struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string          `json:"name" validate:"required,min=3,max=255"`
	Slug            string          `json:"slug" gorm:"uniqueIndex;type:varchar(255)"`
	Description     string          `json:"description" validate:"omitempty,max=2000"`
	Category        string          `json:"category"`
	SubCategory     string          `json:"sub_category"`
	Size            string          `json:"size"`
	ActiveTier      PriceTier       `json:"price_tier" gorm:"type:varchar(20);default:per_unit"`
	Prices          []TierPrice     `json:"prices" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	DiscountPercent int             `json:"discount_percent"`
	StockQuantity   int             `json:"stock_quantity" validate:"gte=0"`
	IsAvailable     bool            `json:"is_available"`
	AverageRating   decimal.Decimal `json:"average_rating" gorm:"type:decimal(3,1)"`
	ReviewCount     int             `json:"review_count"`
	VendorID        string          `json:"vendor_id,omitempty" gorm:"type:varchar(36)"` // stored only, no vendor logic
	gorm.Model      `json:"-"`
}

func (p *Product) tierPrice(tier PriceTier) *TierPrice {
	for i := range p.Prices {
		if p.Prices[i].Tier == tier {
			return &p.Prices[i]
		}
	}
	return nil
}

// PriceFor resolves the current price for one tier. The second return is
// false when the product carries no positive price in that tier; a zero
// price counts as unset, matching the display fallback chains.
func (p *Product) PriceFor(tier PriceTier) (decimal.Decimal, bool) {
	tp := p.tierPrice(tier)
	if tp == nil || !tp.Price.IsPositive() {
		return decimal.Zero, false
	}
	return tp.Price, true
}

// OldPriceFor resolves the previous price for one tier, if one was recorded.
func (p *Product) OldPriceFor(tier PriceTier) (decimal.Decimal, bool) {
	tp := p.tierPrice(tier)
	if tp == nil || !tp.OldPrice.Valid || !tp.OldPrice.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return tp.OldPrice.Decimal, true
}

// SetPrice sets the current price for a tier, creating the row if needed.
func (p *Product) SetPrice(tier PriceTier, price decimal.Decimal) {
	if tp := p.tierPrice(tier); tp != nil {
		tp.Price = price
		return
	}
	p.Prices = append(p.Prices, TierPrice{ProductID: p.ID, Tier: tier, Price: price})
}

// SetOldPrice records the previous price for a tier, creating the row if needed.
func (p *Product) SetOldPrice(tier PriceTier, price decimal.Decimal) {
	if tp := p.tierPrice(tier); tp != nil {
		tp.OldPrice = decimal.NullDecimal{Decimal: price, Valid: true}
		return
	}
	p.Prices = append(p.Prices, TierPrice{
		ProductID: p.ID,
		Tier:      tier,
		OldPrice:  decimal.NullDecimal{Decimal: price, Valid: true},
	})
}

// CurrentPrice returns the price for the active tier.
func (p *Product) CurrentPrice() (decimal.Decimal, bool) {
	return p.PriceFor(p.ActiveTier)
}

// OldPrice returns the previous price for the active tier.
func (p *Product) OldPrice() (decimal.Decimal, bool) {
	return p.OldPriceFor(p.ActiveTier)
}

// HasDiscount reports whether the stored discount percentage is positive.
func (p *Product) HasDiscount() bool {
	return p.DiscountPercent > 0
}

// DiscountAmount is the absolute discount on the active tier, old price
// minus current price, or zero when the product is not discounted.
func (p *Product) DiscountAmount() decimal.Decimal {
	if !p.HasDiscount() {
		return decimal.Zero
	}
	old, _ := p.OldPrice()
	current, _ := p.CurrentPrice()
	return old.Sub(current)
}
