package discount

import "errors"

// ErrNegativePrice is wrapped into a CalculationError when a strategy yields a price below zero.
var ErrNegativePrice = errors.New("strategy produced a negative price")

// ErrMalformedRate is returned by a strategy whose rate table holds a value outside [0, 1].
var ErrMalformedRate = errors.New("discount rate outside [0, 1]")

// CalculationError is the single error type surfaced by the pipeline.
type CalculationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CalculationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the original cause.
func (e *CalculationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError reports a business-rule rejection, such as a coupon that cannot be used.
// It is distinct from CalculationError and never produced by the pipeline itself.
type ValidationError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the original cause.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsCalculationError reports whether err carries a CalculationError.
func IsCalculationError(err error) bool {
	var target *CalculationError
	return errors.As(err, &target)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
