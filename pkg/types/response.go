// Package types defines the wire envelopes every API response uses.
package types

// SuccessEnvelope wraps a successful payload under a single data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public projection of a coded error. Details are only
// populated for codes that allow them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for failed requests.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
