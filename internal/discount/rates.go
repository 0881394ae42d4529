package discount

import "github.com/shopspring/decimal"

// Compiled-in rate tables. Brand and category keys are lower case; bank keys are upper case.
var (
	brandRates = RateTable{
		"puma":   decimal.RequireFromString("0.40"),
		"adidas": decimal.RequireFromString("0.15"),
		"nike":   decimal.RequireFromString("0.25"),
	}
	categoryRates = RateTable{
		"electronics": decimal.RequireFromString("0.15"),
		"clothing":    decimal.RequireFromString("0.10"),
		"books":       decimal.RequireFromString("0.08"),
		"home":        decimal.RequireFromString("0.05"),
	}
	bankRates = RateTable{
		"ICICI": decimal.RequireFromString("0.05"),
		"AXIS":  decimal.RequireFromString("0.03"),
		"HDFC":  decimal.RequireFromString("0.04"),
	}
)

// BrandRates returns a copy of the brand rate table.
func BrandRates() RateTable { return cloneTable(brandRates) }

// CategoryRates returns a copy of the category rate table.
func CategoryRates() RateTable { return cloneTable(categoryRates) }

// BankRates returns a copy of the bank rate table.
func BankRates() RateTable { return cloneTable(bankRates) }

func cloneTable(t RateTable) RateTable {
	out := make(RateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
