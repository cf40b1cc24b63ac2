package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/pkg/config"
	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/pagination"
)

// remoteSource reads listings from a hosted REST catalog. Filters map to
// query parameters; the remote service owns search semantics.
type remoteSource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logger.Logger
}

type remoteManga struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Genres         []string  `json:"genres"`
	Year           int       `json:"year"`
	CoverURL       *string   `json:"cover_url"`
	PriceCents     int64     `json:"price_cents"`
	SalePriceCents *int64    `json:"sale_price_cents"`
	Stock          int       `json:"stock"`
}

// NewRemoteSource builds a catalog source backed by the configured REST
// backend.
func NewRemoteSource(cfg config.CatalogConfig, logg *logger.Logger) (Source, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.RemoteBaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("remote catalog base url required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &remoteSource{
		httpClient: &http.Client{Timeout: cfg.RemoteTimeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.RemoteAPIKey),
		logger:     logg,
	}, nil
}

func (s *remoteSource) List(ctx context.Context, params ListParams) (*ListResult, error) {
	values := url.Values{}
	if search := strings.TrimSpace(params.Search); search != "" {
		values.Set("search", search)
	}
	if genre := strings.TrimSpace(params.Genre); genre != "" {
		values.Set("genre", genre)
	}
	if params.OnSaleOnly {
		values.Set("on_sale", "true")
	}
	values.Set("limit", strconv.Itoa(pagination.NormalizeLimit(params.Pagination.Limit)))
	if cursor := strings.TrimSpace(params.Pagination.Cursor); cursor != "" {
		values.Set("cursor", cursor)
	}

	var payload struct {
		Items      []remoteManga `json:"items"`
		NextCursor string        `json:"next_cursor"`
	}
	if err := s.get(ctx, "/mangas?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	result := &ListResult{
		Items:      make([]MangaDTO, 0, len(payload.Items)),
		NextCursor: payload.NextCursor,
	}
	for i := range payload.Items {
		result.Items = append(result.Items, remoteToDTO(&payload.Items[i]))
	}
	return result, nil
}

func (s *remoteSource) GetByID(ctx context.Context, id uuid.UUID) (*MangaDTO, error) {
	var payload remoteManga
	if err := s.get(ctx, "/mangas/"+id.String(), &payload); err != nil {
		return nil, err
	}
	dto := remoteToDTO(&payload)
	return &dto, nil
}

func (s *remoteSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building catalog request")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling remote catalog")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "manga not found")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("remote catalog returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading catalog response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding catalog response")
	}
	return nil
}

func remoteToDTO(m *remoteManga) MangaDTO {
	effective := m.PriceCents
	if m.SalePriceCents != nil {
		effective = *m.SalePriceCents
	}
	return MangaDTO{
		ID:                  m.ID,
		Title:               m.Title,
		Description:         m.Description,
		Genres:              m.Genres,
		Year:                m.Year,
		CoverURL:            m.CoverURL,
		PriceCents:          m.PriceCents,
		SalePriceCents:      m.SalePriceCents,
		EffectivePriceCents: effective,
		Stock:               m.Stock,
		IsActive:            true,
	}
}
