package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

type localSource struct {
	repo Repository
}

// NewLocalSource serves catalog reads from the service database.
func NewLocalSource(repo Repository) (Source, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &localSource{repo: repo}, nil
}

func (s *localSource) List(ctx context.Context, params ListParams) (*ListResult, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}

	limit := pagination.NormalizeLimit(params.Pagination.Limit)
	result := &ListResult{Items: make([]MangaDTO, 0, len(rows))}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Items = append(result.Items, toDTO(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *localSource) GetByID(ctx context.Context, id uuid.UUID) (*MangaDTO, error) {
	manga, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manga not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
	}
	dto := toDTO(manga)
	return &dto, nil
}
