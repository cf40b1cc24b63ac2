package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comicverse/comicverse-backend/api/controllers"
	"github.com/comicverse/comicverse-backend/api/middleware"
	authsvc "github.com/comicverse/comicverse-backend/internal/auth"
	"github.com/comicverse/comicverse-backend/internal/cart"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	checkoutsvc "github.com/comicverse/comicverse-backend/internal/checkout"
	eventsvc "github.com/comicverse/comicverse-backend/internal/events"
	"github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/pkg/auth/session"
	"github.com/comicverse/comicverse-backend/pkg/config"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs. Optional entries may be
// nil; the affected endpoints then fail with a clean error instead of
// panicking.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth     *authsvc.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Orders   orders.Service
	Checkout *checkoutsvc.Service
	Events   *eventsvc.Service

	Metrics http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": pingerOrNil(deps.Redis),
		}))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface: signup/login, browsing, and the gateway's
		// browser-facing payment callbacks.
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.Idempotency(idempotencyStore(deps.Redis), logg)).
				Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		})

		r.Route("/catalog/mangas", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(deps.Catalog, logg))
			r.Get("/{mangaId}", controllers.CatalogGet(deps.Catalog, logg))
		})

		r.Get("/payments/callback/{outcome}", controllers.PaymentCallback(deps.Checkout, cfg.Checkout.DeepLinkScheme, logg))
		r.Post("/payments/callback", controllers.PaymentWebhook(deps.Checkout, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), logg))

			r.Get("/auth/me", controllers.AuthMe(deps.Auth, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Put("/items/{mangaId}", controllers.CartSetQuantity(deps.Cart, logg))
				r.Delete("/items/{mangaId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutDirect(deps.Checkout, logg))
				r.Post("/redirect", controllers.CheckoutRedirect(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, logg))
			})

			r.Get("/events/next", controllers.EventsNext(deps.Events, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

				r.Post("/catalog/mangas", controllers.AdminCreateManga(deps.Catalog, logg))
				r.Patch("/catalog/mangas/{mangaId}", controllers.AdminUpdateManga(deps.Catalog, logg))
				r.Delete("/catalog/mangas/{mangaId}", controllers.AdminDeleteManga(deps.Catalog, logg))
				r.Post("/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			})
		})
	})

	return r
}

// The helpers below keep a nil *redis.Client from becoming a non-nil
// interface value downstream.

func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
