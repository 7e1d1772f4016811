package common

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// ValidateProduct rejects empty or whitespace-only product names.
func ValidateProduct(product string) error {
	if strings.TrimSpace(product) == "" {
		return fmt.Errorf("%w: %s", ErrValidation,
			ValidationError{Field: "product", Value: product, Message: "must not be empty"}.Error())
	}
	return nil
}

// ValidatePrice rejects non-finite prices and prices outside [min, max].
func ValidatePrice(price, min, max float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: %s", ErrValidation,
			ValidationError{Field: "price", Value: price, Message: "must be a finite number"}.Error())
	}
	if price < min || price > max {
		return fmt.Errorf("%w: %s", ErrValidation,
			ValidationError{Field: "price", Value: price, Message: fmt.Sprintf("must be between %g and %g", min, max)}.Error())
	}
	return nil
}
