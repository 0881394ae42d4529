package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/ecom-discount/internal/cart"
	"github.com/noah-isme/ecom-discount/internal/events"
	"github.com/noah-isme/ecom-discount/internal/obs"
	"github.com/noah-isme/ecom-discount/internal/payment"
	"github.com/noah-isme/ecom-discount/internal/pricing"
	"github.com/noah-isme/ecom-discount/internal/user"
	"github.com/noah-isme/ecom-discount/internal/voucher"
)

// Request carries everything needed to price a cart. Payment and CouponCode are optional.
type Request struct {
	Items      []cart.Item
	Customer   *user.CustomerProfile
	Payment    *payment.Info
	CouponCode string
}

// Service runs the discount pipeline. It holds no per-call state and is safe for concurrent use.
type Service struct {
	strategies []Strategy
	logger     *zerolog.Logger
	bus        *events.Bus
	tracer     trace.Tracer
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithStrategies replaces the default strategy order. Intended for tests.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Service) {
		s.strategies = append([]Strategy(nil), strategies...)
	}
}

// WithLogger sets the logger. Without it the logger attached to the call context is used.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = &logger
	}
}

// WithEventBus publishes pricing events after every calculation.
func WithEventBus(bus *events.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithTracer overrides the tracer used for pipeline spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// DefaultStrategies returns the fixed pipeline order: Brand, Category, Coupon, Bank.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewBrandDiscount(),
		NewCategoryDiscount(),
		NewCouponDiscount(),
		NewBankDiscount(),
	}
}

// NewService builds a Service with the default strategies.
func NewService(opts ...Option) *Service {
	s := &Service{
		strategies: DefaultStrategies(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = obs.Tracer()
	}
	return s
}

// CalculateCartDiscounts prices the cart. Every failure is reported as a *CalculationError.
// A calculation id already stored on ctx is reused; otherwise a new one is generated.
func (s *Service) CalculateCartDiscounts(ctx context.Context, req Request) (price DiscountedPrice, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := s.now()
	calcID := obs.CalculationIDFromContext(ctx)
	if calcID == "" {
		calcID = uuid.NewString()
		ctx = obs.WithCalculationID(ctx, calcID)
	}
	ctx, span := s.tracer.Start(ctx, "discount.calculate", trace.WithAttributes(
		attribute.String("calculation.id", calcID),
		attribute.Int("cart.items", len(req.Items)),
		attribute.Bool("coupon.present", req.CouponCode != ""),
	))
	defer span.End()
	logger := s.loggerFor(ctx).With().Str("calculation_id", calcID).Logger()

	defer func() {
		if r := recover(); r != nil {
			price = DiscountedPrice{}
			err = &CalculationError{Message: "failed to calculate cart discounts", Err: fmt.Errorf("panic: %v", r)}
		}
		elapsed := s.now().Sub(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			obs.ObserveCalculation("error", elapsed)
			logger.Error().Err(err).Msg("discount calculation failed")
			s.emit(ctx, logger, events.TopicPricingFailed, calcID, map[string]string{"error": err.Error()})
			return
		}
		span.SetAttributes(
			attribute.String("price.original", pricing.Format(price.OriginalPrice())),
			attribute.String("price.final", pricing.Format(price.FinalPrice())),
		)
		obs.ObserveCalculation("success", elapsed)
		logger.Info().
			Str("original_price", pricing.Format(price.OriginalPrice())).
			Str("final_price", pricing.Format(price.FinalPrice())).
			Strs("discounts", price.Keys()).
			Int64("duration_us", elapsed.Microseconds()).
			Msg("discount calculation completed")
		s.emit(ctx, logger, events.TopicPricingCalculated, calcID, price)
	}()

	return s.run(req, logger)
}

func (s *Service) run(req Request, logger zerolog.Logger) (DiscountedPrice, error) {
	original := pricing.Subtotal(req.Items)
	if original.IsNegative() {
		return DiscountedPrice{}, &CalculationError{Message: "failed to calculate cart discounts", Err: ErrNegativePrice}
	}
	current := original
	var applied breakdown
	in := Input{
		Items:      req.Items,
		Customer:   req.Customer,
		Payment:    req.Payment,
		CouponCode: req.CouponCode,
	}
	for _, strategy := range s.strategies {
		in.CurrentPrice = current
		res, err := strategy.Apply(in)
		if err != nil {
			return DiscountedPrice{}, &CalculationError{
				Message: fmt.Sprintf("%s strategy failed", strategy.Name()),
				Err:     err,
			}
		}
		if res.FinalPrice.IsNegative() {
			return DiscountedPrice{}, &CalculationError{
				Message: fmt.Sprintf("%s strategy returned %s", strategy.Name(), pricing.Format(res.FinalPrice)),
				Err:     ErrNegativePrice,
			}
		}
		current = res.FinalPrice
		for _, a := range res.Applied {
			applied.add(a)
			obs.ObserveDiscount(strategy.Name(), a.Amount.InexactFloat64())
		}
		evt := logger.Debug().
			Str("strategy", strategy.Name()).
			Str("running_price", pricing.Format(current))
		if res.Note != "" {
			evt = evt.Str("note", res.Note)
		}
		evt.Msg("strategy applied")
	}
	return NewDiscountedPrice(original, pricing.ClampZero(current), applied.entries, ""), nil
}

// ValidateCoupon reports whether code would be applied to the cart for customer.
// It returns nil when eligible and a *ValidationError wrapping the voucher reason otherwise.
func (s *Service) ValidateCoupon(code string, items []cart.Item, customer *user.CustomerProfile) error {
	if _, err := (CouponDiscount{lookup: voucher.Lookup}).eligible(code, items, customer); err != nil {
		return &ValidationError{Message: fmt.Sprintf("coupon %q cannot be applied", code), Err: err}
	}
	return nil
}

func (s *Service) loggerFor(ctx context.Context) zerolog.Logger {
	if s.logger != nil {
		return *s.logger
	}
	return *obs.LoggerFromContext(ctx)
}

func (s *Service) emit(ctx context.Context, logger zerolog.Logger, topic, calcID string, payload any) {
	if s.bus == nil {
		return
	}
	if _, err := s.bus.Emit(ctx, topic, calcID, payload); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Msg("pricing event not delivered")
	}
}
