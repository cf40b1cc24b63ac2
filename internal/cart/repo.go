package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a database-backed cart store.
func NewRepository(db *gorm.DB) Store {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Lines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *repository) FindLine(ctx context.Context, userID, mangaID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpsertLine(ctx context.Context, line *models.CartLine) error {
	existing, err := r.FindLine(ctx, line.UserID, line.MangaID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.WithContext(ctx).Create(line).Error
	}
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", existing.ID).
		UpdateColumn("quantity", line.Quantity).Error
}

func (r *repository) RemoveLine(ctx context.Context, userID, mangaID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND manga_id = ?", userID, mangaID).
		Delete(&models.CartLine{}).Error
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}
