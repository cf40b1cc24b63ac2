package enums

import "fmt"

// PaymentMethod selects the settlement path chosen at checkout.
type PaymentMethod string

const (
	// PaymentMethodDirect settles the order synchronously without an external gateway.
	PaymentMethodDirect PaymentMethod = "direct"
	// PaymentMethodMercadoPago defers settlement to an external payment preference.
	PaymentMethodMercadoPago PaymentMethod = "mercadopago"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodDirect,
	PaymentMethodMercadoPago,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
