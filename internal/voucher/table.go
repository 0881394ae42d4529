package voucher

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

// rules is the compiled-in voucher table keyed by canonical code.
var rules = map[string]Rule{
	"SUPER69": {
		Code:              "SUPER69",
		Kind:              KindFlat,
		Amount:            pricing.MustParse("69"),
		ExcludedBrands:    []string{"NIKE"},
		AllowedCategories: []string{"clothing", "shoes"},
		RequiredTiers:     []user.CustomerTier{user.TierGold, user.TierSilver},
	},
	"WELCOME10": {Code: "WELCOME10", Kind: KindFlat, Amount: pricing.MustParse("10")},
	"FLAT50":    {Code: "FLAT50", Kind: KindFlat, Amount: pricing.MustParse("50")},
	"SAVE10":    {Code: "SAVE10", Kind: KindPercent, Rate: decimal.RequireFromString("0.10")},
	"SAVE20":    {Code: "SAVE20", Kind: KindPercent, Rate: decimal.RequireFromString("0.20")},
	"SAVE30":    {Code: "SAVE30", Kind: KindPercent, Rate: decimal.RequireFromString("0.30")},
}

// Lookup finds the rule for a code after normalizing it.
func Lookup(code string) (Rule, error) {
	key := NormalizeCode(code)
	if key == "" {
		return Rule{}, ErrUnknownCode
	}
	r, ok := rules[key]
	if !ok {
		return Rule{}, ErrUnknownCode
	}
	return r, nil
}

// Codes lists every known voucher code.
func Codes() []string {
	out := make([]string, 0, len(rules))
	for code := range rules {
		out = append(out, code)
	}
	return out
}
