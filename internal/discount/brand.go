package discount

import (
	"fmt"

	"github.com/noah-isme/ecom-discount/internal/catalog"
)

// BrandDiscount takes a per-brand fraction off each line's own total.
type BrandDiscount struct {
	rates RateTable
}

// NewBrandDiscount returns the strategy backed by the compiled-in brand table.
func NewBrandDiscount() BrandDiscount {
	return BrandDiscount{rates: brandRates}
}

// NewBrandDiscountWithRates returns the strategy backed by a custom table with lower-case keys.
func NewBrandDiscountWithRates(rates RateTable) BrandDiscount {
	return BrandDiscount{rates: rates}
}

// Name implements Strategy.
func (BrandDiscount) Name() string { return "brand" }

// Apply implements Strategy. The Brand Discount key is always emitted.
func (s BrandDiscount) Apply(in Input) (Result, error) {
	amount, err := perItemDiscount(in.Items, in.CurrentPrice, s.rates, catalog.Product.Brand)
	if err != nil {
		return Result{}, fmt.Errorf("brand rates: %w", err)
	}
	return Result{
		FinalPrice: in.CurrentPrice.Sub(amount),
		Applied:    []Applied{{Name: KeyBrand, Amount: amount}},
	}, nil
}
