package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicverse/comicverse-backend/pkg/db/models"
)

// memoryStore keeps cart lines in process memory. Carts do not survive a
// restart; useful for demos and tests.
type memoryStore struct {
	mu    sync.RWMutex
	lines map[uuid.UUID]map[uuid.UUID]*models.CartLine
	seq   int64
}

// NewMemoryStore builds an in-memory cart store.
func NewMemoryStore() Store {
	return &memoryStore{lines: map[uuid.UUID]map[uuid.UUID]*models.CartLine{}}
}

func (m *memoryStore) WithTx(tx *gorm.DB) Store {
	return m
}

func (m *memoryStore) Lines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byManga := m.lines[userID]
	out := make([]models.CartLine, 0, len(byManga))
	for _, line := range byManga {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) FindLine(ctx context.Context, userID, mangaID uuid.UUID) (*models.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	line, ok := m.lines[userID][mangaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *line
	return &clone, nil
}

func (m *memoryStore) UpsertLine(ctx context.Context, line *models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lines[line.UserID] == nil {
		m.lines[line.UserID] = map[uuid.UUID]*models.CartLine{}
	}
	if existing, ok := m.lines[line.UserID][line.MangaID]; ok {
		existing.Quantity = line.Quantity
		return nil
	}
	clone := *line
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	if clone.CreatedAt.IsZero() {
		m.seq++
		clone.CreatedAt = time.Unix(0, m.seq)
	}
	m.lines[line.UserID][line.MangaID] = &clone
	return nil
}

func (m *memoryStore) RemoveLine(ctx context.Context, userID, mangaID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.lines[userID], mangaID)
	return nil
}

func (m *memoryStore) Clear(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.lines, userID)
	return nil
}
