package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/api/middleware"
	"github.com/comicverse/comicverse-backend/api/responses"
	"github.com/comicverse/comicverse-backend/api/validators"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	ordersvc "github.com/comicverse/comicverse-backend/internal/orders"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
)

type createMangaRequest struct {
	Title          string   `json:"title" validate:"required,max=300"`
	Description    *string  `json:"description,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Year           int      `json:"year" validate:"required,gt=0"`
	CoverURL       *string  `json:"cover_url,omitempty"`
	PriceCents     int64    `json:"price_cents" validate:"gte=0"`
	SalePriceCents *int64   `json:"sale_price_cents,omitempty"`
	Stock          int      `json:"stock" validate:"gte=0"`
}

type updateMangaRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Year           *int     `json:"year,omitempty"`
	CoverURL       *string  `json:"cover_url,omitempty"`
	PriceCents     *int64   `json:"price_cents,omitempty"`
	SalePriceCents *int64   `json:"sale_price_cents,omitempty"`
	ClearSalePrice bool     `json:"clear_sale_price,omitempty"`
	Stock          *int     `json:"stock,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminCreateManga(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createMangaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		manga, err := svc.Create(r.Context(), catalog.CreateMangaInput{
			Title:          body.Title,
			Description:    body.Description,
			Genres:         body.Genres,
			Year:           body.Year,
			CoverURL:       body.CoverURL,
			PriceCents:     body.PriceCents,
			SalePriceCents: body.SalePriceCents,
			Stock:          body.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, manga)
	}
}

func AdminUpdateManga(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		mangaID, err := uuid.Parse(chi.URLParam(r, "mangaId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid manga id"))
			return
		}

		var body updateMangaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		manga, err := svc.Update(r.Context(), mangaID, catalog.UpdateMangaInput{
			Title:          body.Title,
			Description:    body.Description,
			Genres:         body.Genres,
			Year:           body.Year,
			CoverURL:       body.CoverURL,
			PriceCents:     body.PriceCents,
			SalePriceCents: body.SalePriceCents,
			ClearSalePrice: body.ClearSalePrice,
			Stock:          body.Stock,
			IsActive:       body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, manga)
	}
}

func AdminDeleteManga(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		mangaID, err := uuid.Parse(chi.URLParam(r, "mangaId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid manga id"))
			return
		}

		if err := svc.Delete(r.Context(), mangaID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminUpdateOrderStatus drives the fulfillment state machine.
func AdminUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		var actor *outbox.ActorRef
		if adminID, idErr := middleware.RequireUserID(r.Context()); idErr == nil {
			actor = &outbox.ActorRef{UserID: adminID, Role: middleware.RoleFromContext(r.Context())}
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
