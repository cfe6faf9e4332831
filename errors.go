package main

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is wrapped by ComputationError when a formula produces NaN or ±Inf
var ErrNonFinite = errors.New("result is not a finite number")

// ValidationError reports an input outside its allowed range
type ValidationError struct {
	Field   string  // Input field name, e.g. "apr"
	Bound   string  // Violated bound, e.g. "0 <= apr <= 100"
	Value   float64 // Offending value
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		if e.Bound == "" {
			return e.Message
		}
		return fmt.Sprintf("%s (%s)", e.Message, e.Bound)
	}
	return fmt.Sprintf("invalid %s: %g violates %s", e.Field, e.Value, e.Bound)
}

// ComputationError wraps an arithmetic failure that validation could not rule out
type ComputationError struct {
	Op  string // Calculation that failed
	Err error
}

func (e *ComputationError) Error() string {
	if e.Err == nil {
		return e.Op + ": computation failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

type namedValue struct {
	name  string
	value float64
}

// checkFinite returns a ComputationError naming the first non-finite value
func checkFinite(op string, values ...namedValue) error {
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return &ComputationError{Op: op, Err: fmt.Errorf("%s: %w", v.name, ErrNonFinite)}
		}
	}
	return nil
}
