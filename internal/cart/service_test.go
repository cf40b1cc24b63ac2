package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
)

type fakeMangas struct {
	rows map[uuid.UUID]*models.Manga
}

func (f *fakeMangas) FindByID(ctx context.Context, id uuid.UUID) (*models.Manga, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeMangas) add(title string, priceCents int64, saleCents *int64, stock int) uuid.UUID {
	id := uuid.New()
	f.rows[id] = &models.Manga{
		ID:             id,
		Title:          title,
		PriceCents:     priceCents,
		SalePriceCents: saleCents,
		Stock:          stock,
		IsActive:       true,
	}
	return id
}

func newCartService(t *testing.T) (Service, *fakeMangas) {
	t.Helper()
	mangas := &fakeMangas{rows: map[uuid.UUID]*models.Manga{}}
	svc, err := NewService(NewMemoryStore(), mangas)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, mangas
}

func int64Ptr(v int64) *int64 { return &v }

func TestAddItemMergesRepeatedAdds(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Vagabond Vol. 1", 120000, nil, 10)

	if _, err := svc.AddItem(ctx, userID, mangaID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := svc.AddItem(ctx, userID, mangaID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", dto.Items[0].Quantity)
	}
}

func TestCartSubtotalUsesEffectivePrice(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	fullPrice := mangas.add("Slam Dunk Vol. 1", 80000, nil, 10)
	onSale := mangas.add("Slam Dunk Vol. 2", 80000, int64Ptr(60000), 10)

	if _, err := svc.AddItem(ctx, userID, fullPrice, 1); err != nil {
		t.Fatalf("add full price: %v", err)
	}
	dto, err := svc.AddItem(ctx, userID, onSale, 2)
	if err != nil {
		t.Fatalf("add on sale: %v", err)
	}

	want := int64(80000 + 2*60000)
	if dto.SubtotalCents != want {
		t.Fatalf("expected subtotal %d, got %d", want, dto.SubtotalCents)
	}

	// Subtotal is recomputed, so a later price change shows up on Get.
	mangas.rows[onSale].SalePriceCents = int64Ptr(50000)
	dto, err = svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want = int64(80000 + 2*50000)
	if dto.SubtotalCents != want {
		t.Fatalf("expected recomputed subtotal %d, got %d", want, dto.SubtotalCents)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Monster Vol. 1", 95000, nil, 5)

	if _, err := svc.AddItem(ctx, userID, mangaID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	dto, err := svc.SetQuantity(ctx, userID, mangaID, 0)
	if err != nil {
		t.Fatalf("set quantity zero: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Items))
	}

	// Removing again is a no-op.
	dto, err = svc.RemoveItem(ctx, userID, mangaID)
	if err != nil {
		t.Fatalf("remove absent line: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Items))
	}
}

func TestSetQuantityAbsentLineIsNoOp(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	inCart := mangas.add("Berserk Vol. 1", 110000, nil, 10)
	notInCart := mangas.add("Berserk Vol. 2", 110000, nil, 10)

	if _, err := svc.AddItem(ctx, userID, inCart, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	dto, err := svc.SetQuantity(ctx, userID, notInCart, 3)
	if err != nil {
		t.Fatalf("set quantity on absent line: %v", err)
	}
	if len(dto.Items) != 1 {
		t.Fatalf("expected absent line untouched, got %d lines", len(dto.Items))
	}
	if dto.Items[0].MangaID != inCart || dto.Items[0].Quantity != 1 {
		t.Fatalf("existing line mutated: %+v", dto.Items[0])
	}

	// Same on an empty cart.
	dto, err = svc.SetQuantity(ctx, uuid.New(), notInCart, 3)
	if err != nil {
		t.Fatalf("set quantity on empty cart: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Items))
	}
}

func TestSetQuantityReplacesNotMerges(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("20th Century Boys Vol. 1", 99000, nil, 10)

	if _, err := svc.AddItem(ctx, userID, mangaID, 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.SetQuantity(ctx, userID, mangaID, 2)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if dto.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", dto.Items[0].Quantity)
	}
}

func TestAddItemRejectsStockExceeded(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Limited Print", 200000, nil, 3)

	if _, err := svc.AddItem(ctx, userID, mangaID, 2); err != nil {
		t.Fatalf("add within stock: %v", err)
	}

	_, err := svc.AddItem(ctx, userID, mangaID, 2)
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeStockExceeded {
		t.Fatalf("expected stock exceeded, got %v", err)
	}

	// The failed add must not change the cart.
	dto, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.Items[0].Quantity != 2 {
		t.Fatalf("failed add mutated cart: %+v", dto.Items[0])
	}
}

func TestAddItemValidation(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Valid", 10000, nil, 5)

	if _, err := svc.AddItem(ctx, userID, mangaID, 0); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero quantity")
	}
	if _, err := svc.AddItem(ctx, userID, uuid.New(), 1); pkgerrors.As(err) == nil {
		t.Fatal("expected not found for unknown manga")
	}

	mangas.rows[mangaID].IsActive = false
	if _, err := svc.AddItem(ctx, userID, mangaID, 1); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for inactive manga")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Dragon Ball Vol. 1", 45000, nil, 8)

	if _, err := svc.AddItem(ctx, userID, mangaID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	dto, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.Items) != 0 || dto.SubtotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", dto)
	}
}

func TestGetPrunesRemovedListings(t *testing.T) {
	svc, mangas := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	mangaID := mangas.add("Soon Delisted", 30000, nil, 5)

	if _, err := svc.AddItem(ctx, userID, mangaID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	delete(mangas.rows, mangaID)

	dto, err := svc.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected pruned cart, got %+v", dto.Items)
	}
}
