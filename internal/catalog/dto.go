package catalog

import (
	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

// MangaDTO is the API-facing projection of a catalog listing.
type MangaDTO struct {
	ID                  uuid.UUID `json:"id"`
	Title               string    `json:"title"`
	Description         *string   `json:"description,omitempty"`
	Genres              []string  `json:"genres"`
	Year                int       `json:"year"`
	CoverURL            *string   `json:"cover_url,omitempty"`
	PriceCents          int64     `json:"price_cents"`
	SalePriceCents      *int64    `json:"sale_price_cents,omitempty"`
	EffectivePriceCents int64     `json:"effective_price_cents"`
	Stock               int       `json:"stock"`
	IsActive            bool      `json:"is_active"`
}

// ListParams captures catalog browsing filters.
type ListParams struct {
	Search     string
	Genre      string
	OnSaleOnly bool
	Pagination pagination.Params
}

// ListResult is one page of catalog listings.
type ListResult struct {
	Items      []MangaDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateMangaInput is the admin payload for a new listing.
type CreateMangaInput struct {
	Title          string
	Description    *string
	Genres         []string
	Year           int
	CoverURL       *string
	PriceCents     int64
	SalePriceCents *int64
	Stock          int
}

// UpdateMangaInput carries partial updates; nil fields are left untouched.
type UpdateMangaInput struct {
	Title          *string
	Description    *string
	Genres         []string
	Year           *int
	CoverURL       *string
	PriceCents     *int64
	SalePriceCents *int64
	ClearSalePrice bool
	Stock          *int
	IsActive       *bool
}

func toDTO(m *models.Manga) MangaDTO {
	return MangaDTO{
		ID:                  m.ID,
		Title:               m.Title,
		Description:         m.Description,
		Genres:              []string(m.Genres),
		Year:                m.Year,
		CoverURL:            m.CoverURL,
		PriceCents:          m.PriceCents,
		SalePriceCents:      m.SalePriceCents,
		EffectivePriceCents: m.EffectivePriceCents(),
		Stock:               m.Stock,
		IsActive:            m.IsActive,
	}
}
