package scenario

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/noah-isme/ecom-discount/internal/discount"
	"github.com/noah-isme/ecom-discount/internal/pricing"
)

// Result records the outcome of a single scenario.
type Result struct {
	ScenarioName string
	Price        discount.DiscountedPrice
	Passed       bool
	Failures     []string
	Duration     time.Duration
}

// Pricer is the subset of discount.Service the runner needs.
type Pricer interface {
	CalculateCartDiscounts(ctx context.Context, req discount.Request) (discount.DiscountedPrice, error)
}

// Runner prices scenarios and checks their expectations.
type Runner struct {
	pricer Pricer
}

// NewRunner creates a Runner backed by the given pricer.
func NewRunner(p Pricer) *Runner {
	return &Runner{pricer: p}
}

// Run prices a single scenario. Building or pricing failures are returned as errors;
// expectation mismatches are reported on the Result.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	start := time.Now()
	req, err := s.Request()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	price, err := r.pricer.CalculateCartDiscounts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	res := &Result{ScenarioName: s.Name, Price: price}
	if s.Expect != nil {
		res.Failures = check(price, *s.Expect)
	}
	res.Passed = len(res.Failures) == 0
	res.Duration = time.Since(start)
	return res, nil
}

func check(price discount.DiscountedPrice, want Expect) []string {
	var failures []string
	compare := func(label, expected string, got pricing.Money) {
		if expected == "" {
			return
		}
		exp, err := pricing.Parse(expected)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: bad expectation %q", label, expected))
			return
		}
		if !exp.Equal(got) {
			failures = append(failures, fmt.Sprintf("%s: expected %s, got %s", label, pricing.Format(exp), pricing.Format(got)))
		}
	}

	compare("original_price", want.OriginalPrice, price.OriginalPrice())
	compare("final_price", want.FinalPrice, price.FinalPrice())

	names := make([]string, 0, len(want.Discounts))
	for name := range want.Discounts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		got, ok := price.Discount(name)
		if !ok {
			failures = append(failures, fmt.Sprintf("discount %q: missing", name))
			continue
		}
		compare("discount "+name, want.Discounts[name], got)
	}
	for _, name := range want.Absent {
		if _, ok := price.Discount(name); ok {
			failures = append(failures, fmt.Sprintf("discount %q: expected absent", name))
		}
	}
	if len(want.Keys) > 0 && !slices.Equal(want.Keys, price.Keys()) {
		failures = append(failures, fmt.Sprintf("keys: expected %v, got %v", want.Keys, price.Keys()))
	}
	return failures
}
