package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Source is the read-side catalog surface. The local implementation serves
// from the service database; the remote one proxies a hosted REST catalog.
type Source interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MangaDTO, error)
}
