package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authsvc "github.com/comicverse/comicverse-backend/internal/auth"
	"github.com/comicverse/comicverse-backend/internal/cart"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	checkoutsvc "github.com/comicverse/comicverse-backend/internal/checkout"
	eventsvc "github.com/comicverse/comicverse-backend/internal/events"
	"github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/internal/users"
	pkgauth "github.com/comicverse/comicverse-backend/pkg/auth"
	"github.com/comicverse/comicverse-backend/pkg/auth/session"
	"github.com/comicverse/comicverse-backend/pkg/config"
	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubSessions struct{}

func (stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-token", nil
}

func (stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return session.NewAccessID(), "refresh-token", nil
}

func (stubSessions) Revoke(ctx context.Context, accessID string) error { return nil }

type stubUserRepo struct{}

func (r stubUserRepo) WithTx(tx *gorm.DB) users.Repository { return r }

func (stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return user, nil
}

func (stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, params catalog.ListParams) (*catalog.ListResult, error) {
	return &catalog.ListResult{}, nil
}

func (stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*catalog.MangaDTO, error) {
	return &catalog.MangaDTO{ID: id}, nil
}

func (stubCatalogService) Create(ctx context.Context, input catalog.CreateMangaInput) (*catalog.MangaDTO, error) {
	return &catalog.MangaDTO{ID: uuid.New()}, nil
}

func (stubCatalogService) Update(ctx context.Context, id uuid.UUID, input catalog.UpdateMangaInput) (*catalog.MangaDTO, error) {
	return &catalog.MangaDTO{ID: id}, nil
}

func (stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubCartService struct{}

func (stubCartService) AddItem(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) SetQuantity(ctx context.Context, userID, mangaID uuid.UUID, qty int) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, mangaID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error { return nil }

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) CreateFromCart(ctx context.Context, params orders.CreateParams) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New(), UserID: params.UserID}, nil
}

func (stubOrdersService) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID, UserID: userID}, nil
}

func (stubOrdersService) GetByExternalReference(ctx context.Context, ref string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

func (stubOrdersService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actor *outbox.ActorRef) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID, Status: target}, nil
}

func (stubOrdersService) ConfirmByExternalReference(ctx context.Context, ref string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

func (stubOrdersService) CancelByExternalReference(ctx context.Context, ref string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

type stubLocker struct{}

func (stubLocker) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return true, nil
}

func (stubLocker) Del(ctx context.Context, keys ...string) error { return nil }

func (stubLocker) CheckoutLockKey(userID string) string { return "lock:" + userID }

type stubNotifier struct{}

func (stubNotifier) Publish(ctx context.Context, userID uuid.UUID, event eventsvc.Event) error {
	return nil
}

// stubQueue always reports an empty queue.
type stubQueue struct{}

func (stubQueue) LPush(ctx context.Context, key string, values ...any) error { return nil }

func (stubQueue) RPop(ctx context.Context, key string) (string, error) {
	return "", redislib.Nil
}

func (stubQueue) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

func (stubQueue) EventQueueKey(userID string) string { return "events:" + userID }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Checkout: config.CheckoutConfig{DeepLinkScheme: "comicverse"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	authService, err := authsvc.NewService(stubUserRepo{}, stubSessions{}, cfg.JWT, config.PasswordConfig{}, logg)
	if err != nil {
		t.Fatalf("build auth service: %v", err)
	}

	eventsService, err := eventsvc.NewService(stubQueue{}, 0, logg)
	if err != nil {
		t.Fatalf("build events service: %v", err)
	}

	checkoutService, err := checkoutsvc.NewService(
		stubOrdersService{},
		stubCartService{},
		nil,
		stubLocker{},
		stubNotifier{},
		nil,
		logg,
		checkoutsvc.Options{},
	)
	if err != nil {
		t.Fatalf("build checkout service: %v", err)
	}

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       stubPinger{},
		Sessions: stubSessionChecker{},
		Auth:     authService,
		Catalog:  stubCatalogService{},
		Cart:     stubCartService{},
		Orders:   stubOrdersService{},
		Checkout: checkoutService,
		Events:   eventsService,
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "reader@comicverse.app",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/next", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for events poll got %d", resp.Code)
	}
}

func TestCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/mangas", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	target := "/api/v1/admin/catalog/mangas/" + uuid.NewString()

	customer := httptest.NewRequest(http.MethodDelete, target, nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestPaymentCallbackRejectsUnknownOutcome(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback/bogus?external_reference=ref-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown outcome got %d", resp.Code)
	}
}

func TestPaymentWebhookResolvesOutcome(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback?outcome=failure&external_reference=ref-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for webhook got %d", resp.Code)
	}
}

func TestPaymentCallbackRedirectsToDeepLink(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback/success?external_reference=ref-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect got %d", resp.Code)
	}
	location := resp.Header().Get("Location")
	if location == "" || location[:13] != "comicverse://" {
		t.Fatalf("expected comicverse:// deep link got %q", location)
	}
}
