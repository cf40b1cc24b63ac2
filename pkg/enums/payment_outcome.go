package enums

import "fmt"

// PaymentOutcome is the terminal state reported by the payment redirect callback.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
	PaymentOutcomePending PaymentOutcome = "pending"
)

var validPaymentOutcomes = []PaymentOutcome{
	PaymentOutcomeSuccess,
	PaymentOutcomeFailure,
	PaymentOutcomePending,
}

// String implements fmt.Stringer.
func (o PaymentOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known PaymentOutcome.
func (o PaymentOutcome) IsValid() bool {
	for _, candidate := range validPaymentOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParsePaymentOutcome converts a callback path segment into a PaymentOutcome.
func ParsePaymentOutcome(value string) (PaymentOutcome, error) {
	for _, candidate := range validPaymentOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown payment outcome %q", value)
}
