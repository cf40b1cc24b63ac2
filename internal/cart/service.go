package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
)

type mangaLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Manga, error)
}

// Service exposes cart aggregation operations.
type Service interface {
	AddItem(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, mangaID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	store  Store
	mangas mangaLoader
}

// NewService builds a cart service backed by the provided store and catalog.
func NewService(store Store, mangas mangaLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if mangas == nil {
		return nil, fmt.Errorf("manga loader required")
	}
	return &service{store: store, mangas: mangas}, nil
}

// AddItem merges qty into any existing line for the manga. The merged
// quantity is capped by current stock.
func (s *service) AddItem(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	manga, err := s.loadPurchasable(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	target := qty
	existing, err := s.store.FindLine(ctx, userID, mangaID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if existing != nil {
		target += existing.Quantity
	}

	if target > manga.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds available stock")
	}

	line := &models.CartLine{UserID: userID, MangaID: mangaID, Quantity: target}
	if err := s.store.UpsertLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
	}

	return s.Get(ctx, userID)
}

// SetQuantity replaces the quantity of a line already in the cart. A
// quantity of zero or less removes the line, matching RemoveItem. Setting a
// line the cart does not hold leaves the cart unchanged; AddItem is the only
// way to introduce one.
func (s *service) SetQuantity(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if mangaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, mangaID)
	}

	existing, err := s.store.FindLine(ctx, userID, mangaID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if existing == nil {
		return s.Get(ctx, userID)
	}

	manga, err := s.loadPurchasable(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	if qty > manga.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeStockExceeded, "requested quantity exceeds available stock")
	}

	line := &models.CartLine{UserID: userID, MangaID: mangaID, Quantity: qty}
	if err := s.store.UpsertLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
	}

	return s.Get(ctx, userID)
}

// RemoveItem deletes the line if present. Removing an absent line is a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, mangaID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if mangaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}
	if err := s.store.RemoveLine(ctx, userID, mangaID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.Get(ctx, userID)
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Get aggregates the cart at current catalog prices.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	lines, err := s.store.Lines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	dto := &CartDTO{Items: make([]LineDTO, 0, len(lines))}
	for _, line := range lines {
		manga, err := s.mangas.FindByID(ctx, line.MangaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Listing was removed since the line was added; drop it.
				if err := s.store.RemoveLine(ctx, userID, line.MangaID); err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune cart line")
				}
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
		}

		unit := manga.EffectivePriceCents()
		lineSubtotal := unit * int64(line.Quantity)
		dto.Items = append(dto.Items, LineDTO{
			MangaID:           manga.ID,
			Title:             manga.Title,
			Quantity:          line.Quantity,
			UnitPriceCents:    unit,
			LineSubtotalCents: lineSubtotal,
			Stock:             manga.Stock,
		})
		dto.SubtotalCents += lineSubtotal
	}
	return dto, nil
}

func (s *service) loadPurchasable(ctx context.Context, mangaID uuid.UUID) (*models.Manga, error) {
	if mangaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga id is required")
	}
	manga, err := s.mangas.FindByID(ctx, mangaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manga not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manga")
	}
	if !manga.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manga is not available")
	}
	return manga, nil
}
