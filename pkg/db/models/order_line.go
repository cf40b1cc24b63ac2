package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLine snapshots one manga at purchase time.
type OrderLine struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	MangaID           uuid.UUID `gorm:"column:manga_id;type:uuid;not null"`
	Title             string    `gorm:"column:title;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	UnitPriceCents    int64     `gorm:"column:unit_price_cents;not null"`
	LineSubtotalCents int64     `gorm:"column:line_subtotal_cents;not null"`
}

// BeforeCreate assigns the primary key client-side so the model works on
// both Postgres and SQLite.
func (l *OrderLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
