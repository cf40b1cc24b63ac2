package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLine is one manga entry in a user's cart. A user holds at most one
// line per manga; repeated adds merge into the existing row.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_manga"`
	MangaID   uuid.UUID `gorm:"column:manga_id;type:uuid;not null;uniqueIndex:idx_cart_user_manga"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Manga     *Manga    `gorm:"foreignKey:MangaID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key client-side so the model works on
// both Postgres and SQLite.
func (c *CartLine) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
