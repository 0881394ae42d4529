package discount

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/catalog"
	"github.com/noah-isme/ecom-discount/internal/events"
	"github.com/noah-isme/ecom-discount/internal/obs"
	"github.com/noah-isme/ecom-discount/internal/payment"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
)

func calculate(t *testing.T, svc *Service, req Request) DiscountedPrice {
	t.Helper()
	price, err := svc.CalculateCartDiscounts(context.Background(), req)
	require.NoError(t, err)
	return price
}

func requireAmount(t *testing.T, price DiscountedPrice, key, want string) {
	t.Helper()
	got, ok := price.Discount(key)
	require.True(t, ok, "missing %q in %v", key, price.Keys())
	require.Equal(t, want, pricing.Format(got), key)
}

func TestFullPipeline(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(pumaShirt, 1), item(samsungTV, 1)},
		Customer:   customer(user.TierGold),
		Payment:    bankPayment("ICICI"),
		CouponCode: "WELCOME10",
	})

	require.Equal(t, "379.98", pricing.Format(price.OriginalPrice()))
	require.Equal(t, []string{KeyBrand, KeyCategory, "Coupon: WELCOME10", KeyBank}, price.Keys())
	requireAmount(t, price, KeyBrand, "32.00")
	requireAmount(t, price, KeyCategory, "53.00")
	requireAmount(t, price, "Coupon: WELCOME10", "10.00")
	requireAmount(t, price, KeyBank, "14.25")
	require.Equal(t, "270.73", pricing.Format(price.FinalPrice()))
	require.Equal(t, "109.25", pricing.Format(price.TotalDiscount()))
	require.Equal(t, "28.75", price.DiscountPercentage().StringFixed(2))
	require.Equal(t,
		"Applied Brand Discount: 32.00; Applied Category Discount: 53.00; Applied Coupon: WELCOME10: 10.00; Applied Bank Discount: 14.25",
		price.Message())
}

func TestBrandOnlyScenario(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:    []cart.Item{item(nikeHundred, 1)},
		Customer: customer(user.TierBronze),
	})
	requireAmount(t, price, KeyBrand, "25.00")
	requireAmount(t, price, KeyCategory, "0.00")
	requireAmount(t, price, KeyBank, "0.00")
	require.Equal(t, "75.00", pricing.Format(price.FinalPrice()))
	require.Equal(t, "Applied Brand Discount: 25.00", price.Message())
}

func TestCouponCappedScenario(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(acmeToy, 1)},
		Customer:   customer(user.TierGold),
		Payment:    bankPayment("HDFC"),
		CouponCode: "FLAT50",
	})
	requireAmount(t, price, "Coupon: FLAT50", "20.00")
	requireAmount(t, price, KeyBank, "0.00")
	require.Equal(t, "0.00", pricing.Format(price.FinalPrice()))
	require.Equal(t, "100.00", price.DiscountPercentage().StringFixed(2))
}

func TestSuper69CapsAfterEarlierDiscounts(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(pumaShirt, 1)},
		Customer:   customer(user.TierGold),
		CouponCode: "SUPER69",
	})
	requireAmount(t, price, KeyBrand, "32.00")
	requireAmount(t, price, KeyCategory, "8.00")
	requireAmount(t, price, "Coupon: SUPER69", "39.99")
	require.True(t, price.FinalPrice().IsZero())
}

func TestCouponRejectedByExclusionScenario(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(nikeShirt, 1)},
		Customer:   customer(user.TierGold),
		CouponCode: "SUPER69",
	})
	require.Equal(t, []string{KeyBrand, KeyCategory, KeyBank}, price.Keys())
	_, ok := price.Discount("Coupon: SUPER69")
	require.False(t, ok)
	// 99.99 - 25.00 - 10.00
	require.Equal(t, "64.99", pricing.Format(price.FinalPrice()))
}

func TestBankUnknownScenario(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:    []cart.Item{item(acmeToy, 2)},
		Customer: customer(user.TierSilver),
		Payment:  bankPayment("UNKNOWN"),
	})
	requireAmount(t, price, KeyBank, "0.00")
	require.Equal(t, "40.00", pricing.Format(price.FinalPrice()))
	require.Equal(t, NoDiscountsMessage, price.Message())
}

func TestLegacyPercentCouponUsesRunningPrice(t *testing.T) {
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(samsungTV, 1)},
		Customer:   customer(user.TierBronze),
		CouponCode: "save10",
	})
	requireAmount(t, price, KeyCategory, "45.00")
	requireAmount(t, price, "Coupon: save10", "25.50")
	require.Equal(t, "229.49", pricing.Format(price.FinalPrice()))
}

func TestEmptyCart(t *testing.T) {
	price := calculate(t, NewService(), Request{Customer: customer(user.TierGold), Payment: bankPayment("ICICI"), CouponCode: "WELCOME10"})
	require.True(t, price.OriginalPrice().IsZero())
	require.True(t, price.FinalPrice().IsZero())
	for _, d := range price.AppliedDiscounts() {
		require.True(t, d.Amount.IsZero(), d.Name)
	}
	require.True(t, price.DiscountPercentage().IsZero())
	require.Equal(t, NoDiscountsMessage, price.Message())
}

func TestZeroQuantityItemContributesNothing(t *testing.T) {
	withZero := calculate(t, NewService(), Request{
		Items:    []cart.Item{item(nikeShirt, 0), item(pumaShirt, 1)},
		Customer: customer(user.TierGold),
	})
	without := calculate(t, NewService(), Request{
		Items:    []cart.Item{item(pumaShirt, 1)},
		Customer: customer(user.TierGold),
	})
	require.Equal(t, "79.99", pricing.Format(withZero.OriginalPrice()))
	require.Equal(t, without.Keys(), withZero.Keys())
	for _, d := range without.AppliedDiscounts() {
		requireAmount(t, withZero, d.Name, pricing.Format(d.Amount))
	}
	require.True(t, without.FinalPrice().Equal(withZero.FinalPrice()))
}

func TestDeterminism(t *testing.T) {
	svc := NewService()
	req := Request{
		Items:      []cart.Item{item(pumaShirt, 2), item(adidasShoes, 1)},
		Customer:   customer(user.TierSilver),
		Payment:    bankPayment("AXIS"),
		CouponCode: "SUPER69",
	}
	first := calculate(t, svc, req)
	second := calculate(t, NewService(), req)
	require.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestInvariantsAcrossCarts(t *testing.T) {
	products := []cartProduct{
		{nikeShirt, 1}, {pumaShirt, 3}, {samsungTV, 1}, {adidasShoes, 2},
		{acmeToy, 0}, {genericBook, 4}, {unbrandedMug, 1},
	}
	codes := []string{"", "SUPER69", "WELCOME10", "FLAT50", "SAVE30", "nope"}
	banks := []*payment.Info{nil, bankPayment("ICICI"), bankPayment("axis"), bankPayment("Other")}
	tiers := []user.CustomerTier{user.TierGold, user.TierBronze}

	svc := NewService()
	for start := range products {
		for size := 0; size <= len(products)-start; size++ {
			items := make([]cart.Item, 0, size)
			for _, p := range products[start : start+size] {
				items = append(items, item(p.product, p.qty))
			}
			for _, code := range codes {
				for _, bank := range banks {
					for _, tier := range tiers {
						name := fmt.Sprintf("items[%d:%d]/%s/%v/%s", start, start+size, code, bank != nil, tier)
						price, err := svc.CalculateCartDiscounts(context.Background(), Request{
							Items: items, Customer: customer(tier), Payment: bank, CouponCode: code,
						})
						require.NoError(t, err, name)
						require.False(t, price.FinalPrice().IsNegative(), name)
						require.True(t, price.FinalPrice().LessThanOrEqual(price.OriginalPrice()), name)
						require.True(t, price.TotalDiscount().Equal(price.SumOfDiscounts()), name)
						requireOrdered(t, price.Keys(), name)
					}
				}
			}
		}
	}
}

type cartProduct struct {
	product catalog.Product
	qty     int
}

func requireOrdered(t *testing.T, keys []string, name string) {
	t.Helper()
	rank := func(k string) int {
		switch {
		case k == KeyBrand:
			return 0
		case k == KeyCategory:
			return 1
		case len(k) > len(KeyCouponPrefix) && k[:len(KeyCouponPrefix)] == KeyCouponPrefix:
			return 2
		case k == KeyBank:
			return 3
		}
		return -1
	}
	last := -1
	for _, k := range keys {
		r := rank(k)
		require.Greater(t, r, last, "%s: keys %v", name, keys)
		last = r
	}
}

func TestStrategiesRunInOrderOnRunningPrice(t *testing.T) {
	var seen []pricing.Money
	svc := NewService(WithStrategies(
		fakeStrategy{name: "a", key: "A", amount: money("10"), seen: &seen},
		fakeStrategy{name: "b", key: "B", amount: money("5"), seen: &seen},
		fakeStrategy{name: "c", key: "C", amount: money("1"), seen: &seen},
	))
	price := calculate(t, svc, Request{Items: []cart.Item{item(acmeToy, 2)}})

	require.Len(t, seen, 3)
	assert.Equal(t, "40.00", pricing.Format(seen[0]))
	assert.Equal(t, "30.00", pricing.Format(seen[1]))
	assert.Equal(t, "25.00", pricing.Format(seen[2]))
	require.Equal(t, []string{"A", "B", "C"}, price.Keys())
	require.Equal(t, "24.00", pricing.Format(price.FinalPrice()))
}

func TestDefaultOrderIsBrandCategoryCouponBank(t *testing.T) {
	names := make([]string, 0, 4)
	for _, s := range DefaultStrategies() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"brand", "category", "coupon", "bank"}, names)
}

func TestReusedKeyAccumulates(t *testing.T) {
	svc := NewService(WithStrategies(
		fakeStrategy{name: "a", key: "Shared", amount: money("1.25")},
		fakeStrategy{name: "b", key: "Other", amount: money("2")},
		fakeStrategy{name: "c", key: "Shared", amount: money("0.75")},
	))
	price := calculate(t, svc, Request{Items: []cart.Item{item(acmeToy, 1)}})
	require.Equal(t, []string{"Shared", "Other"}, price.Keys())
	requireAmount(t, price, "Shared", "2.00")
	require.Equal(t, "16.00", pricing.Format(price.FinalPrice()))
}

func TestNegativeStrategyPriceFailsFast(t *testing.T) {
	var seen []pricing.Money
	negative := money("-0.01")
	svc := NewService(WithStrategies(
		fakeStrategy{name: "bad", final: &negative, seen: &seen},
		fakeStrategy{name: "never", key: "N", amount: money("1"), seen: &seen},
	))
	_, err := svc.CalculateCartDiscounts(context.Background(), Request{Items: []cart.Item{item(acmeToy, 1)}})
	require.Error(t, err)
	require.True(t, IsCalculationError(err))
	require.ErrorIs(t, err, ErrNegativePrice)
	require.Len(t, seen, 1)
}

func TestStrategyErrorIsWrapped(t *testing.T) {
	cause := errors.New("lookup table missing")
	svc := NewService(WithStrategies(fakeStrategy{name: "broken", err: cause}))
	_, err := svc.CalculateCartDiscounts(context.Background(), Request{})

	var calcErr *CalculationError
	require.ErrorAs(t, err, &calcErr)
	require.ErrorIs(t, err, cause)
	require.Contains(t, calcErr.Message, "broken")
	require.False(t, IsValidationError(err))
}

func TestStrategyPanicIsWrapped(t *testing.T) {
	svc := NewService(WithStrategies(fakeStrategy{name: "boom", panics: true}))
	price, err := svc.CalculateCartDiscounts(context.Background(), Request{Items: []cart.Item{item(acmeToy, 1)}})
	require.True(t, IsCalculationError(err))
	require.Contains(t, err.Error(), "table corrupted")
	require.True(t, price.FinalPrice().IsZero())
}

func TestMalformedRatesSurfaceAsCalculationError(t *testing.T) {
	svc := NewService(WithStrategies(NewBrandDiscountWithRates(RateTable{"nike": decimal.NewFromInt(2)})))
	_, err := svc.CalculateCartDiscounts(context.Background(), Request{Items: []cart.Item{item(nikeShirt, 1)}})
	require.True(t, IsCalculationError(err))
	require.ErrorIs(t, err, ErrMalformedRate)
}

func TestSubCentPriceNeverGoesNegative(t *testing.T) {
	subCent := product("9", "Acme", "toys", "20.005")
	price := calculate(t, NewService(), Request{
		Items:      []cart.Item{item(subCent, 1)},
		Customer:   customer(user.TierGold),
		CouponCode: "FLAT50",
	})

	coupon, ok := price.Discount("Coupon: FLAT50")
	require.True(t, ok)
	require.True(t, coupon.Equal(money("20.005")), coupon.String())
	require.True(t, price.FinalPrice().IsZero())
	require.True(t, price.OriginalPrice().Equal(money("20.005")))
}

func TestValidateCoupon(t *testing.T) {
	svc := NewService()
	gold := customer(user.TierGold)

	require.NoError(t, svc.ValidateCoupon("SUPER69", []cart.Item{item(pumaShirt, 1)}, gold))
	require.NoError(t, svc.ValidateCoupon("welcome10", nil, nil))

	err := svc.ValidateCoupon("SUPER69", []cart.Item{item(nikeShirt, 1)}, gold)
	require.True(t, IsValidationError(err))
	require.False(t, IsCalculationError(err))

	err = svc.ValidateCoupon("NOPE", nil, gold)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Contains(t, valErr.Message, "NOPE")
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestServiceEmitsPricingEvents(t *testing.T) {
	notifier := &captureNotifier{}
	svc := NewService(WithEventBus(&events.Bus{Notifiers: []events.Notifier{notifier}}))
	calculate(t, svc, Request{Items: []cart.Item{item(nikeHundred, 1)}})

	require.Len(t, notifier.events, 1)
	ev := notifier.events[0]
	require.Equal(t, events.TopicPricingCalculated, ev.Topic)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	require.Equal(t, "75.00", payload["final_price"])

	failing := NewService(
		WithEventBus(&events.Bus{Notifiers: []events.Notifier{notifier}}),
		WithStrategies(fakeStrategy{name: "broken", err: errors.New("x")}),
	)
	_, err := failing.CalculateCartDiscounts(context.Background(), Request{})
	require.Error(t, err)
	require.Len(t, notifier.events, 2)
	require.Equal(t, events.TopicPricingFailed, notifier.events[1].Topic)
}

func TestServiceLogsCalculation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	calculate(t, NewService(WithLogger(logger)), Request{Items: []cart.Item{item(nikeHundred, 1)}, CouponCode: "BOGUS"})

	out := buf.String()
	require.Contains(t, out, `"message":"discount calculation completed"`)
	require.Contains(t, out, `"calculation_id"`)
	require.Contains(t, out, `"note":"voucher code unknown"`)
	require.Contains(t, out, `"final_price":"75.00"`)
}

func TestServiceReusesCalculationIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := obs.WithCalculationID(context.Background(), "calc-fixed")
	_, err := NewService(WithLogger(zerolog.New(&buf))).CalculateCartDiscounts(ctx, Request{Items: []cart.Item{item(acmeToy, 1)}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"calculation_id":"calc-fixed"`)
}

func TestServiceUsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())
	_, err := NewService().CalculateCartDiscounts(ctx, Request{Items: []cart.Item{item(acmeToy, 1)}})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "discount calculation completed")
}

func TestServiceRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc := NewService(WithTracer(tp.Tracer("test")))
	calculate(t, svc, Request{Items: []cart.Item{item(nikeHundred, 1)}})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "discount.calculate", spans[0].Name())
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "75.00", attrs["price.final"])
	require.Equal(t, "1", attrs["cart.items"])
}

func TestServiceRecordsMetrics(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", nil, prometheus.NewRegistry())
	obs.DiscountCalculationsTotal.Reset()
	obs.DiscountAppliedTotal.Reset()
	obs.DiscountAmountTotal.Reset()

	calculate(t, NewService(), Request{Items: []cart.Item{item(nikeHundred, 1)}, Payment: bankPayment("ICICI")})
	_, _ = NewService(WithStrategies(fakeStrategy{name: "broken", err: errors.New("x")})).
		CalculateCartDiscounts(context.Background(), Request{})

	require.Equal(t, 1.0, testutil.ToFloat64(obs.DiscountCalculationsTotal.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.DiscountCalculationsTotal.WithLabelValues("error")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.DiscountAppliedTotal.WithLabelValues("brand")))
	require.Equal(t, 25.0, testutil.ToFloat64(obs.DiscountAmountTotal.WithLabelValues("brand")))
	require.Equal(t, 0.0, testutil.ToFloat64(obs.DiscountAppliedTotal.WithLabelValues("category")))
	require.InDelta(t, 3.75, testutil.ToFloat64(obs.DiscountAmountTotal.WithLabelValues("bank")), 1e-9)
}
