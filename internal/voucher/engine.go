package voucher

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

var (
	// ErrUnknownCode is returned when no voucher exists for the code.
	ErrUnknownCode = errors.New("voucher code unknown")
	// ErrTierNotEligible indicates the customer's tier is not in the voucher's required tiers.
	ErrTierNotEligible = errors.New("voucher not available for customer tier")
	// ErrBrandExcluded indicates at least one cart line carries an excluded brand.
	ErrBrandExcluded = errors.New("voucher excludes a brand in the cart")
	// ErrCategoryNotAllowed indicates at least one cart line falls outside the allowed categories.
	ErrCategoryNotAllowed = errors.New("voucher not valid for a category in the cart")
)

// Kind selects how a voucher's value is interpreted.
type Kind string

const (
	// KindFlat subtracts a fixed amount, capped at the running price.
	KindFlat Kind = "flat"
	// KindPercent subtracts a fraction of the running price.
	KindPercent Kind = "percent"
)

// Rule captures a voucher's value and eligibility constraints.
type Rule struct {
	Code              string
	Kind              Kind
	Amount            pricing.Money
	Rate              decimal.Decimal
	ExcludedBrands    []string
	AllowedCategories []string
	RequiredTiers     []user.CustomerTier
}

// Item is the projection of a cart line the engine needs for eligibility checks.
type Item struct {
	Brand    string
	Category string
}

// Check reports whether the voucher may be applied for the customer tier and cart.
// A nil tier only passes when the rule has no tier requirement.
// Brand and category checks are all-or-nothing across the cart.
func (r Rule) Check(tier *user.CustomerTier, items []Item) error {
	if len(r.RequiredTiers) > 0 {
		if tier == nil || !containsTier(r.RequiredTiers, *tier) {
			return ErrTierNotEligible
		}
	}
	for _, it := range items {
		if containsFold(r.ExcludedBrands, it.Brand) {
			return ErrBrandExcluded
		}
		if len(r.AllowedCategories) > 0 && !containsFold(r.AllowedCategories, it.Category) {
			return ErrCategoryNotAllowed
		}
	}
	return nil
}

// Compute determines the discount for the running price. The result never exceeds the price,
// even when rounding a sub-cent price would push it over.
func Compute(current pricing.Money, r Rule) pricing.Money {
	if !current.IsPositive() {
		return pricing.Zero
	}
	var discount pricing.Money
	switch r.Kind {
	case KindPercent:
		if !r.Rate.IsPositive() {
			return pricing.Zero
		}
		discount = pricing.Round(current.Mul(r.Rate))
	default:
		discount = pricing.Round(r.Amount)
	}
	if discount.IsNegative() {
		return pricing.Zero
	}
	return pricing.Min(discount, current)
}

// NormalizeCode converts a user supplied code to the canonical table key.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func containsTier(tiers []user.CustomerTier, tier user.CustomerTier) bool {
	for _, t := range tiers {
		if t == tier {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}
