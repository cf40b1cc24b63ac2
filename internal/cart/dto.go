package cart

import "github.com/google/uuid"

// LineDTO is one cart entry priced at the current effective price.
type LineDTO struct {
	MangaID           uuid.UUID `json:"manga_id"`
	Title             string    `json:"title"`
	Quantity          int       `json:"quantity"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	LineSubtotalCents int64     `json:"line_subtotal_cents"`
	Stock             int       `json:"stock"`
}

// CartDTO aggregates a user's cart. SubtotalCents is always recomputed from
// current catalog prices, never stored.
type CartDTO struct {
	Items         []LineDTO `json:"items"`
	SubtotalCents int64     `json:"subtotal_cents"`
}
