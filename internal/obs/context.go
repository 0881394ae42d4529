package obs

import "context"

// calculationIDKey is the context key storing the pricing calculation id.
type calculationIDKey struct{}

// WithCalculationID stores the calculation id on the context.
func WithCalculationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, calculationIDKey{}, id)
}

// CalculationIDFromContext extracts the calculation id from context if present.
func CalculationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(calculationIDKey{}).(string); ok {
		return v
	}
	return ""
}
