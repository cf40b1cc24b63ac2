package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comicverse/comicverse-backend/api/responses"
	checkoutsvc "github.com/comicverse/comicverse-backend/internal/checkout"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
)

// PaymentCallback is the browser-facing back URL the gateway redirects to.
// It resolves the order and forwards the buyer into the app via deep link.
// Unknown outcomes are rejected before touching any order.
func PaymentCallback(svc *checkoutsvc.Service, deepLinkScheme string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		outcome, err := enums.ParsePaymentOutcome(chi.URLParam(r, "outcome"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment outcome"))
			return
		}

		externalRef := strings.TrimSpace(r.URL.Query().Get("external_reference"))
		if externalRef == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "external_reference is required"))
			return
		}

		// The gateway appends payment_id to its back URLs; checkout uses it
		// to reconcile pending outcomes.
		paymentID := strings.TrimSpace(r.URL.Query().Get("payment_id"))

		result, err := svc.HandleCallback(r.Context(), outcome, externalRef, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target := fmt.Sprintf("%s://payment/%s?order_id=%s",
			deepLinkScheme,
			url.PathEscape(result.Outcome.String()),
			url.QueryEscape(result.Order.ID.String()),
		)
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// PaymentWebhook is the server-to-server variant of the callback. Same
// resolution as PaymentCallback, but it answers JSON instead of redirecting.
func PaymentWebhook(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		outcome, err := enums.ParsePaymentOutcome(strings.TrimSpace(r.URL.Query().Get("outcome")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment outcome"))
			return
		}

		externalRef := strings.TrimSpace(r.URL.Query().Get("external_reference"))
		if externalRef == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "external_reference is required"))
			return
		}

		paymentID := strings.TrimSpace(r.URL.Query().Get("payment_id"))

		result, err := svc.HandleCallback(r.Context(), outcome, externalRef, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
