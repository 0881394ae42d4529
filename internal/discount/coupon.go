package discount

import (
	"strings"

	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/user"
	"github.com/noah-isme/ecom-discount/internal/voucher"
)

// CouponDiscount applies a voucher from the voucher table when the cart and customer qualify.
type CouponDiscount struct {
	lookup func(code string) (voucher.Rule, error)
}

// NewCouponDiscount returns the strategy backed by the compiled-in voucher table.
func NewCouponDiscount() CouponDiscount {
	return CouponDiscount{lookup: voucher.Lookup}
}

// Name implements Strategy.
func (CouponDiscount) Name() string { return "coupon" }

// Apply implements Strategy. An ineligible or missing coupon leaves the price unchanged and emits no key.
func (s CouponDiscount) Apply(in Input) (Result, error) {
	unchanged := Result{FinalPrice: in.CurrentPrice}
	code := strings.TrimSpace(in.CouponCode)
	if code == "" {
		unchanged.Note = "no coupon"
		return unchanged, nil
	}
	rule, err := s.eligible(code, in.Items, in.Customer)
	if err != nil {
		unchanged.Note = err.Error()
		return unchanged, nil
	}
	amount := voucher.Compute(in.CurrentPrice, rule)
	return Result{
		FinalPrice: in.CurrentPrice.Sub(amount),
		Applied:    []Applied{{Name: KeyCouponPrefix + code, Amount: amount}},
	}, nil
}

func (s CouponDiscount) eligible(code string, items []cart.Item, customer *user.CustomerProfile) (voucher.Rule, error) {
	lookup := s.lookup
	if lookup == nil {
		lookup = voucher.Lookup
	}
	rule, err := lookup(code)
	if err != nil {
		return voucher.Rule{}, err
	}
	var tier *user.CustomerTier
	if customer != nil {
		t := customer.Tier()
		tier = &t
	}
	if err := rule.Check(tier, voucherItems(items)); err != nil {
		return voucher.Rule{}, err
	}
	return rule, nil
}

func voucherItems(items []cart.Item) []voucher.Item {
	out := make([]voucher.Item, 0, len(items))
	for _, it := range items {
		out = append(out, voucher.Item{
			Brand:    it.Product().Brand(),
			Category: it.Product().Category(),
		})
	}
	return out
}
