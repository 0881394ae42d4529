// Package discount prices a cart by running an ordered set of discount strategies
// over a running price.
package discount

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/payment"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

// Keys of the applied discounts breakdown.
const (
	KeyBrand        = "Brand Discount"
	KeyCategory     = "Category Discount"
	KeyBank         = "Bank Discount"
	KeyCouponPrefix = "Coupon: "
)

// Input is the cart state handed to a strategy.
type Input struct {
	Items        []cart.Item
	CurrentPrice pricing.Money
	Customer     *user.CustomerProfile
	Payment      *payment.Info
	CouponCode   string
}

// Applied is one named discount amount.
type Applied struct {
	Name   string
	Amount pricing.Money
}

// Result is what a strategy hands back to the pipeline.
// FinalPrice equals the input CurrentPrice minus the sum of Applied amounts.
type Result struct {
	FinalPrice pricing.Money
	Applied    []Applied
	// Note explains an absent discount. It is for logs only.
	Note string
}

// Strategy computes one kind of discount. Implementations must be pure.
type Strategy interface {
	Name() string
	Apply(in Input) (Result, error)
}

// RateTable maps a normalized key to a discount rate.
type RateTable map[string]decimal.Decimal

// Rate returns the rate for key, zero when absent.
func (t RateTable) Rate(key string) decimal.Decimal {
	if r, ok := t[key]; ok {
		return r
	}
	return decimal.Zero
}

func (t RateTable) validate() error {
	for _, r := range t {
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
			return ErrMalformedRate
		}
	}
	return nil
}

// perItemDiscount sums item.TotalPrice × rate over the cart, rounds once at the end
// and caps the result at the running price.
func perItemDiscount(items []cart.Item, current pricing.Money, table RateTable, key func(catalog.Product) string) (pricing.Money, error) {
	if err := table.validate(); err != nil {
		return pricing.Zero, err
	}
	total := pricing.Zero
	for _, it := range items {
		rate := table.Rate(strings.ToLower(strings.TrimSpace(key(it.Product()))))
		if rate.IsZero() {
			continue
		}
		total = total.Add(it.TotalPrice().Mul(rate))
	}
	return pricing.Min(pricing.Round(total), pricing.ClampZero(current)), nil
}
