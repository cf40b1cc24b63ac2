package catalog

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

type fakeRepo struct {
	rows map[uuid.UUID]*models.Manga
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*models.Manga{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, manga *models.Manga) (*models.Manga, error) {
	if manga.ID == uuid.Nil {
		manga.ID = uuid.New()
	}
	clone := *manga
	f.rows[manga.ID] = &clone
	return manga, nil
}

func (f *fakeRepo) Update(ctx context.Context, manga *models.Manga) (*models.Manga, error) {
	clone := *manga
	f.rows[manga.ID] = &clone
	return manga, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Manga, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeRepo) List(ctx context.Context, params ListParams) ([]models.Manga, error) {
	var out []models.Manga
	for _, row := range f.rows {
		if !row.IsActive {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(row.Title), strings.ToLower(params.Search)) {
			continue
		}
		if params.OnSaleOnly && row.SalePriceCents == nil {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	limit := pagination.LimitWithBuffer(params.Pagination.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	row, ok := f.rows[id]
	if !ok || row.Stock < qty {
		return gorm.ErrRecordNotFound
	}
	row.Stock -= qty
	return nil
}

func (f *fakeRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Stock += qty
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	source, err := NewLocalSource(repo)
	if err != nil {
		t.Fatalf("new local source: %v", err)
	}
	svc, err := NewService(source, repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestCreateAndGetManga(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := int64(79900)
	created, err := svc.Create(ctx, CreateMangaInput{
		Title:          "Berserk Vol. 1",
		Genres:         []string{"seinen", "fantasy"},
		Year:           1990,
		PriceCents:     99900,
		SalePriceCents: &sale,
		Stock:          10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.EffectivePriceCents != 79900 {
		t.Fatalf("expected sale price to win, got %d", created.EffectivePriceCents)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Berserk Vol. 1" || got.Stock != 10 {
		t.Fatalf("unexpected manga %+v", got)
	}
}

func TestCreateMangaRejectsSaleAboveListPrice(t *testing.T) {
	svc, _ := newTestService(t)

	sale := int64(120000)
	_, err := svc.Create(context.Background(), CreateMangaInput{
		Title:          "Overpriced Sale",
		Year:           2001,
		PriceCents:     99900,
		SalePriceCents: &sale,
	})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateMangaClearsSalePrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := int64(50000)
	created, err := svc.Create(ctx, CreateMangaInput{
		Title:          "Naruto Vol. 1",
		Year:           1999,
		PriceCents:     89900,
		SalePriceCents: &sale,
		Stock:          3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, UpdateMangaInput{ClearSalePrice: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SalePriceCents != nil {
		t.Fatalf("sale price not cleared: %+v", updated)
	}
	if updated.EffectivePriceCents != 89900 {
		t.Fatalf("effective price should fall back to list price, got %d", updated.EffectivePriceCents)
	}
}

func TestGetUnknownMangaReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFiltersBySearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"One Piece Vol. 1", "One Piece Vol. 2", "Bleach Vol. 1"} {
		if _, err := svc.Create(ctx, CreateMangaInput{Title: title, Year: 2000, PriceCents: 50000}); err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
	}

	result, err := svc.List(ctx, ListParams{Search: "one piece"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Items))
	}
}

func TestDeleteMangaNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), uuid.New())
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
