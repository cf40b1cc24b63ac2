package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Manga is a catalog listing. Prices are stored in integer cents;
// SalePriceCents, when set, is the effective price for cart and order math.
type Manga struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title          string         `gorm:"column:title;not null;index"`
	Description    *string        `gorm:"column:description"`
	Genres         pq.StringArray `gorm:"column:genres;type:text[]"`
	Year           int            `gorm:"column:year;not null"`
	CoverURL       *string        `gorm:"column:cover_url"`
	PriceCents     int64          `gorm:"column:price_cents;not null"`
	SalePriceCents *int64         `gorm:"column:sale_price_cents"`
	Stock          int            `gorm:"column:stock;not null;default:0"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key client-side so the model works on
// both Postgres and SQLite.
func (m *Manga) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EffectivePriceCents is the sale price when present, the list price otherwise.
func (m *Manga) EffectivePriceCents() int64 {
	if m.SalePriceCents != nil {
		return *m.SalePriceCents
	}
	return m.PriceCents
}
