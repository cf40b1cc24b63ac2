package mercadopago

import "github.com/shopspring/decimal"

// PreferenceItem is one purchasable line inside a checkout preference.
type PreferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

// BackURLs tells the gateway where to send the buyer after payment.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest is the payload for creating a checkout preference.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
}

// Preference is the gateway's view of a created checkout preference.
type Preference struct {
	ID                string `json:"id"`
	InitPoint         string `json:"init_point"`
	SandboxInitPoint  string `json:"sandbox_init_point,omitempty"`
	ExternalReference string `json:"external_reference"`
}

// Payment statuses the callers branch on. The gateway reports more states
// (in_process, authorized, refunded); anything unlisted is treated as still
// in flight.
const (
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
)

// Payment is the gateway's record of a settled or attempted payment.
type Payment struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail,omitempty"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
}

// PreferenceParams carries what checkout knows when building a preference.
type PreferenceParams struct {
	ExternalReference string
	Items             []PreferenceItem
}

// AmountFromCents converts integer cents into the decimal amount the
// gateway expects.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
