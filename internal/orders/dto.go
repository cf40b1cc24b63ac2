package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/enums"
)

// OrderLineDTO is a priced snapshot of one manga at purchase time.
type OrderLineDTO struct {
	MangaID           uuid.UUID `json:"manga_id"`
	Title             string    `json:"title"`
	Quantity          int       `json:"quantity"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	LineSubtotalCents int64     `json:"line_subtotal_cents"`
}

// OrderDTO is the API-facing projection of an order.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            enums.OrderStatus   `json:"status"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	SubtotalCents     int64               `json:"subtotal_cents"`
	ShippingFeeCents  int64               `json:"shipping_fee_cents"`
	TotalCents        int64               `json:"total_cents"`
	ExternalReference *string             `json:"external_reference,omitempty"`
	Lines             []OrderLineDTO      `json:"lines"`
	CreatedAt         time.Time           `json:"created_at"`
}

// ListResult is one page of a user's order history.
type ListResult struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                order.ID,
		UserID:            order.UserID,
		Status:            order.Status,
		PaymentMethod:     order.PaymentMethod,
		SubtotalCents:     order.SubtotalCents,
		ShippingFeeCents:  order.ShippingFeeCents,
		TotalCents:        order.TotalCents,
		ExternalReference: order.ExternalReference,
		Lines:             make([]OrderLineDTO, 0, len(order.Lines)),
		CreatedAt:         order.CreatedAt,
	}
	for _, line := range order.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			MangaID:           line.MangaID,
			Title:             line.Title,
			Quantity:          line.Quantity,
			UnitPriceCents:    line.UnitPriceCents,
			LineSubtotalCents: line.LineSubtotalCents,
		})
	}
	return dto
}
