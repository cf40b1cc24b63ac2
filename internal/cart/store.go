package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
)

// Store persists cart lines per user. The database-backed implementation is
// the default; the in-memory one serves ephemeral single-node setups.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Lines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	FindLine(ctx context.Context, userID, mangaID uuid.UUID) (*models.CartLine, error)
	UpsertLine(ctx context.Context, line *models.CartLine) error
	RemoveLine(ctx context.Context, userID, mangaID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
