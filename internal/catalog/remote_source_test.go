package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/pkg/config"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
)

func newRemote(t *testing.T, baseURL string) Source {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	source, err := NewRemoteSource(config.CatalogConfig{
		Source:        "remote",
		RemoteBaseURL: baseURL,
		RemoteAPIKey:  "remote-key",
		RemoteTimeout: 5 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new remote source: %v", err)
	}
	return source
}

func TestRemoteSourceList(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer remote-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("search"); got != "akira" {
			t.Errorf("search filter not forwarded, got %q", got)
		}
		sale := int64(150000)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []remoteManga{{
				ID:             id,
				Title:          "Akira Vol. 1",
				Year:           1984,
				PriceCents:     199900,
				SalePriceCents: &sale,
				Stock:          4,
			}},
			"next_cursor": "abc",
		})
	}))
	defer server.Close()

	result, err := newRemote(t, server.URL).List(context.Background(), ListParams{Search: "akira"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.NextCursor != "abc" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Items[0].EffectivePriceCents != 150000 {
		t.Fatalf("expected sale price, got %d", result.Items[0].EffectivePriceCents)
	}
}

func TestRemoteSourceGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newRemote(t, server.URL).GetByID(context.Background(), uuid.New())
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
