package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
)

// Service exposes catalog reads plus the admin write surface.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*MangaDTO, error)
	Create(ctx context.Context, input CreateMangaInput) (*MangaDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateMangaInput) (*MangaDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	source Source
	repo   Repository
}

// NewService builds a catalog service. Reads go through source; writes
// always hit the local repository.
func NewService(source Source, repo Repository) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{source: source, repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.source.List(ctx, params)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*MangaDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}
	return s.source.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateMangaInput) (*MangaDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	manga := &models.Manga{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Genres:         pq.StringArray(input.Genres),
		Year:           input.Year,
		CoverURL:       input.CoverURL,
		PriceCents:     input.PriceCents,
		SalePriceCents: input.SalePriceCents,
		Stock:          input.Stock,
		IsActive:       true,
	}

	created, err := s.repo.Create(ctx, manga)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create manga")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateMangaInput) (*MangaDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}

	manga, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manga not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		manga.Title = title
	}
	if input.Description != nil {
		manga.Description = input.Description
	}
	if input.Genres != nil {
		manga.Genres = pq.StringArray(input.Genres)
	}
	if input.Year != nil {
		manga.Year = *input.Year
	}
	if input.CoverURL != nil {
		manga.CoverURL = input.CoverURL
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		manga.PriceCents = *input.PriceCents
	}
	if input.ClearSalePrice {
		manga.SalePriceCents = nil
	} else if input.SalePriceCents != nil {
		if *input.SalePriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
		}
		manga.SalePriceCents = input.SalePriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		manga.Stock = *input.Stock
	}
	if input.IsActive != nil {
		manga.IsActive = *input.IsActive
	}

	if manga.SalePriceCents != nil && *manga.SalePriceCents > manga.PriceCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot exceed list price")
	}

	updated, err := s.repo.Update(ctx, manga)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update manga")
	}
	dto := toDTO(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "manga not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete manga")
	}
	return nil
}

func validateCreate(input CreateMangaInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Year <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "year is required")
	}
	if input.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.SalePriceCents != nil && (*input.SalePriceCents < 0 || *input.SalePriceCents > input.PriceCents) {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale price must be between zero and list price")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}
