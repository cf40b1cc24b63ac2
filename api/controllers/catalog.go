package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/api/responses"
	"github.com/comicverse/comicverse-backend/api/validators"
	"github.com/comicverse/comicverse-backend/internal/catalog"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

// CatalogList is the public browse endpoint with search, genre, and sale
// filters plus cursor pagination.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		onSale, err := validators.ParseQueryBool(r, "on_sale")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), catalog.ListParams{
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			Genre:      strings.TrimSpace(r.URL.Query().Get("genre")),
			OnSaleOnly: onSale,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		manga, err := svc.Get(r.Context(), mangaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, manga)
	}
}
