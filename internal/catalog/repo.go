package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

// Repository exposes catalog persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, manga *models.Manga) (*models.Manga, error)
	Update(ctx context.Context, manga *models.Manga) (*models.Manga, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Manga, error)
	List(ctx context.Context, params ListParams) ([]models.Manga, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, manga *models.Manga) (*models.Manga, error) {
	if err := r.db.WithContext(ctx).Create(manga).Error; err != nil {
		return nil, err
	}
	return manga, nil
}

func (r *repository) Update(ctx context.Context, manga *models.Manga) (*models.Manga, error) {
	if err := r.db.WithContext(ctx).Save(manga).Error; err != nil {
		return nil, err
	}
	return manga, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Manga{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Manga, error) {
	var manga models.Manga
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&manga).Error
	if err != nil {
		return nil, err
	}
	return &manga, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Manga, error) {
	query := r.db.WithContext(ctx).Model(&models.Manga{}).Where("is_active = ?", true)

	if search := strings.TrimSpace(params.Search); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if genre := strings.TrimSpace(params.Genre); genre != "" {
		query = query.Where("? = ANY(genres)", genre)
	}
	if params.OnSaleOnly {
		query = query.Where("sale_price_cents IS NOT NULL")
	}

	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) > (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Manga
	err = query.
		Order("created_at ASC").
		Order("id ASC").
		Limit(pagination.LimitWithBuffer(params.Pagination.Limit)).
		Find(&rows).Error
	return rows, err
}

// DecrementStock atomically reduces stock, failing when the row would go
// negative.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Manga{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Manga{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
