package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrLayout        = errors.New("layout_error")
)

// InvalidAmountError reports a numeric input that violates its declared
// range. It wraps ErrInvalidAmount so callers can match the class while the
// payload names the offending field.
type InvalidAmountError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %s (%s=%s)", ErrInvalidAmount.Error(), e.Reason, e.Field, e.Value)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// LayoutError reports content that cannot be rendered within the document
// geometry even after wrapping and pagination.
type LayoutError struct {
	Field  string
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s (field=%s)", ErrLayout.Error(), e.Reason, e.Field)
}

func (e *LayoutError) Unwrap() error { return ErrLayout }
