package discount

import (
	"fmt"

	"github.com/noah-isme/ecom-discount/internal/catalog"
)

// CategoryDiscount takes a per-category fraction off each line's own total.
type CategoryDiscount struct {
	rates RateTable
}

// NewCategoryDiscount returns the strategy backed by the compiled-in category table.
func NewCategoryDiscount() CategoryDiscount {
	return CategoryDiscount{rates: categoryRates}
}

// NewCategoryDiscountWithRates returns the strategy backed by a custom table with lower-case keys.
func NewCategoryDiscountWithRates(rates RateTable) CategoryDiscount {
	return CategoryDiscount{rates: rates}
}

// Name implements Strategy.
func (CategoryDiscount) Name() string { return "category" }

// Apply implements Strategy. The Category Discount key is always emitted.
func (s CategoryDiscount) Apply(in Input) (Result, error) {
	amount, err := perItemDiscount(in.Items, in.CurrentPrice, s.rates, catalog.Product.Category)
	if err != nil {
		return Result{}, fmt.Errorf("category rates: %w", err)
	}
	return Result{
		FinalPrice: in.CurrentPrice.Sub(amount),
		Applied:    []Applied{{Name: KeyCategory, Amount: amount}},
	}, nil
}
