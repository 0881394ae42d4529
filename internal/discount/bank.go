package discount

import (
	"fmt"
	"strings"

	"github.com/noah-isme/ecom-discount/internal/pricing"
)

// BankDiscount takes a per-bank fraction off the running price.
type BankDiscount struct {
	rates RateTable
}

// NewBankDiscount returns the strategy backed by the compiled-in bank table.
func NewBankDiscount() BankDiscount {
	return BankDiscount{rates: bankRates}
}

// NewBankDiscountWithRates returns the strategy backed by a custom table with upper-case keys.
func NewBankDiscountWithRates(rates RateTable) BankDiscount {
	return BankDiscount{rates: rates}
}

// Name implements Strategy.
func (BankDiscount) Name() string { return "bank" }

// Apply implements Strategy. The Bank Discount key is always emitted, with zero when no bank matches.
func (s BankDiscount) Apply(in Input) (Result, error) {
	if err := s.rates.validate(); err != nil {
		return Result{}, fmt.Errorf("bank rates: %w", err)
	}
	res := Result{
		FinalPrice: in.CurrentPrice,
		Applied:    []Applied{{Name: KeyBank, Amount: pricing.Zero}},
	}
	if in.Payment == nil || strings.TrimSpace(in.Payment.BankName()) == "" {
		res.Note = "no bank on payment"
		return res, nil
	}
	rate := s.rates.Rate(strings.ToUpper(strings.TrimSpace(in.Payment.BankName())))
	if rate.IsZero() {
		res.Note = "bank not eligible"
		return res, nil
	}
	amount := pricing.Min(pricing.Round(in.CurrentPrice.Mul(rate)), pricing.ClampZero(in.CurrentPrice))
	res.FinalPrice = in.CurrentPrice.Sub(amount)
	res.Applied[0].Amount = amount
	return res, nil
}
