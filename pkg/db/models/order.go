package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/enums"
)

// Order is the header row for a placed order. Line items snapshot the price
// paid per unit at purchase time, so later catalog edits never rewrite an
// order's total. ExternalReference links a redirect checkout to its payment
// preference.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:PENDING"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null"`
	SubtotalCents     int64               `gorm:"column:subtotal_cents;not null"`
	ShippingFeeCents  int64               `gorm:"column:shipping_fee_cents;not null"`
	TotalCents        int64               `gorm:"column:total_cents;not null"`
	ExternalReference *string             `gorm:"column:external_reference;uniqueIndex"`
	Lines             []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key client-side so the model works on
// both Postgres and SQLite.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
