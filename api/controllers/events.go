package controllers

import (
	"net/http"

	"github.com/comicverse/comicverse-backend/api/middleware"
	"github.com/comicverse/comicverse-backend/api/responses"
	eventsvc "github.com/comicverse/comicverse-backend/internal/events"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
)

// EventsNext pops the oldest undelivered client event. An empty queue yields
// a null event, not an error, so clients can poll cheaply.
func EventsNext(svc *eventsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := svc.Next(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"event": event})
	}
}
