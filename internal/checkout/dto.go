package checkout

import (
	"github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/pkg/enums"
)

// DirectResult is the outcome of a synchronous checkout.
type DirectResult struct {
	Order *orders.OrderDTO `json:"order"`
}

// RedirectResult carries the gateway redirect target for an asynchronous
// checkout. The order stays PENDING until the payment callback lands.
type RedirectResult struct {
	Order             *orders.OrderDTO `json:"order"`
	ExternalReference string           `json:"external_reference"`
	InitPoint         string           `json:"init_point"`
}

// CallbackResult reports how a payment callback resolved.
type CallbackResult struct {
	Order   *orders.OrderDTO     `json:"order"`
	Outcome enums.PaymentOutcome `json:"outcome"`
}
