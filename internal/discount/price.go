package discount

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-discount/internal/pricing"
)

// NoDiscountsMessage is the message of a result where every discount is zero or absent.
const NoDiscountsMessage = "No discounts applied"

// DiscountedPrice is the immutable outcome of a pipeline run.
type DiscountedPrice struct {
	originalPrice pricing.Money
	finalPrice    pricing.Money
	discounts     []Applied
	message       string
}

// NewDiscountedPrice builds a result. An empty message is derived from the discounts.
func NewDiscountedPrice(original, final pricing.Money, discounts []Applied, message string) DiscountedPrice {
	copied := append([]Applied(nil), discounts...)
	if message == "" {
		message = deriveMessage(copied)
	}
	return DiscountedPrice{
		originalPrice: original,
		finalPrice:    final,
		discounts:     copied,
		message:       message,
	}
}

func (p DiscountedPrice) OriginalPrice() pricing.Money { return p.originalPrice }
func (p DiscountedPrice) FinalPrice() pricing.Money    { return p.finalPrice }
func (p DiscountedPrice) Message() string              { return p.message }

// AppliedDiscounts returns the breakdown in strategy invocation order.
func (p DiscountedPrice) AppliedDiscounts() []Applied {
	return append([]Applied(nil), p.discounts...)
}

// Keys returns the breakdown names in order.
func (p DiscountedPrice) Keys() []string {
	keys := make([]string, 0, len(p.discounts))
	for _, d := range p.discounts {
		keys = append(keys, d.Name)
	}
	return keys
}

// Discount returns the amount recorded under name.
func (p DiscountedPrice) Discount(name string) (pricing.Money, bool) {
	for _, d := range p.discounts {
		if d.Name == name {
			return d.Amount, true
		}
	}
	return pricing.Zero, false
}

// SumOfDiscounts adds every amount in the breakdown.
func (p DiscountedPrice) SumOfDiscounts() pricing.Money {
	total := pricing.Zero
	for _, d := range p.discounts {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalDiscount is original minus final price.
func (p DiscountedPrice) TotalDiscount() pricing.Money {
	return p.originalPrice.Sub(p.finalPrice)
}

// DiscountPercentage is the total discount as a percentage of the original price, rounded to two places.
func (p DiscountedPrice) DiscountPercentage() decimal.Decimal {
	if p.originalPrice.IsZero() {
		return decimal.Zero
	}
	return p.TotalDiscount().Div(p.originalPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

type appliedJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type discountedPriceJSON struct {
	OriginalPrice      string        `json:"original_price"`
	FinalPrice         string        `json:"final_price"`
	AppliedDiscounts   []appliedJSON `json:"applied_discounts"`
	TotalDiscount      string        `json:"total_discount"`
	DiscountPercentage string        `json:"discount_percentage"`
	Message            string        `json:"message"`
}

// MarshalJSON encodes the result with two-decimal amounts and the breakdown as an ordered list.
func (p DiscountedPrice) MarshalJSON() ([]byte, error) {
	applied := make([]appliedJSON, 0, len(p.discounts))
	for _, d := range p.discounts {
		applied = append(applied, appliedJSON{Name: d.Name, Amount: pricing.Format(d.Amount)})
	}
	return json.Marshal(discountedPriceJSON{
		OriginalPrice:      pricing.Format(p.originalPrice),
		FinalPrice:         pricing.Format(p.finalPrice),
		AppliedDiscounts:   applied,
		TotalDiscount:      pricing.Format(p.TotalDiscount()),
		DiscountPercentage: p.DiscountPercentage().StringFixed(2),
		Message:            p.message,
	})
}

func deriveMessage(discounts []Applied) string {
	parts := make([]string, 0, len(discounts))
	for _, d := range discounts {
		if d.Amount.IsZero() {
			continue
		}
		parts = append(parts, "Applied "+d.Name+": "+pricing.Format(d.Amount))
	}
	if len(parts) == 0 {
		return NoDiscountsMessage
	}
	return strings.Join(parts, "; ")
}

// breakdown accumulates named amounts in first-insertion order.
type breakdown struct {
	entries []Applied
}

func (b *breakdown) add(a Applied) {
	for i := range b.entries {
		if b.entries[i].Name == a.Name {
			b.entries[i].Amount = b.entries[i].Amount.Add(a.Amount)
			return
		}
	}
	b.entries = append(b.entries, a)
}
