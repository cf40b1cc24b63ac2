package mercadopago

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comicverse/comicverse-backend/pkg/config"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(config.MercadoPagoConfig{
		BaseURL:        baseURL,
		AccessToken:    "TEST-token",
		CurrencyID:     "CLP",
		RequestTimeout: 5 * time.Second,
		SuccessURL:     "https://cv.test/payment/success",
		FailureURL:     "https://cv.test/payment/failure",
		PendingURL:     "https://cv.test/payment/pending",
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreatePreference(t *testing.T) {
	var captured PreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer TEST-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Preference{
			ID:                "pref-123",
			InitPoint:         "https://mp.test/init/pref-123",
			ExternalReference: captured.ExternalReference,
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	pref, err := client.CreatePreference(context.Background(), PreferenceParams{
		ExternalReference: "order-abc",
		Items: []PreferenceItem{
			{Title: "One Piece Vol. 1", Quantity: 2, UnitPrice: AmountFromCents(990000), CurrencyID: "CLP"},
		},
	})
	if err != nil {
		t.Fatalf("create preference: %v", err)
	}

	if pref.ID != "pref-123" || pref.InitPoint == "" {
		t.Fatalf("unexpected preference %+v", pref)
	}
	if captured.ExternalReference != "order-abc" {
		t.Fatalf("external reference not forwarded, got %q", captured.ExternalReference)
	}
	if captured.BackURLs.Success != "https://cv.test/payment/success" {
		t.Fatalf("back urls not forwarded, got %+v", captured.BackURLs)
	}
	if !captured.Items[0].UnitPrice.Equal(AmountFromCents(990000)) {
		t.Fatalf("unit price mismatch: %s", captured.Items[0].UnitPrice)
	}
}

func TestCreatePreferenceValidation(t *testing.T) {
	client := testClient(t, "https://unused.test")

	_, err := client.CreatePreference(context.Background(), PreferenceParams{ExternalReference: "ref"})
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetPaymentMapsGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "payment not found"})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetPayment(context.Background(), "12345")

	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAmountFromCents(t *testing.T) {
	if got := AmountFromCents(3000); got.String() != "30" {
		t.Fatalf("expected 30, got %s", got)
	}
	if got := AmountFromCents(12990); got.String() != "129.9" {
		t.Fatalf("expected 129.9, got %s", got)
	}
}
