package controllers

import (
	"net/http"

	"github.com/comicverse/comicverse-backend/api/middleware"
	"github.com/comicverse/comicverse-backend/api/responses"
	checkoutsvc "github.com/comicverse/comicverse-backend/internal/checkout"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/outbox"
)

// CheckoutDirect settles the cart synchronously.
func CheckoutDirect(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Direct(r.Context(), userID, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutRedirect creates a pending order and returns the gateway redirect.
func CheckoutRedirect(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BeginRedirect(r.Context(), userID, actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func actorFromContext(r *http.Request) *outbox.ActorRef {
	userID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
