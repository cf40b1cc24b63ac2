package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/comicverse/comicverse-backend/pkg/errors"
	"github.com/comicverse/comicverse-backend/pkg/logger"
	"github.com/comicverse/comicverse-backend/pkg/redis"
)

// Event types pushed to a user's client queue.
const (
	TypePaymentResult = "payment.result"
	TypeOrderStatus   = "order.status"
)

// Event is a one-shot client notification. Once a client pops it, it is gone.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type queueStore interface {
	LPush(ctx context.Context, key string, values ...any) error
	RPop(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	EventQueueKey(userID string) string
}

// Service maintains per-user event queues with at-most-once delivery.
type Service struct {
	store queueStore
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService wires the event queue. TTL bounds how long undelivered events
// survive; zero disables expiry.
func NewService(store queueStore, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("queue store required")
	}
	return &Service{store: store, ttl: ttl, logg: logg}, nil
}

// Publish appends the event to the user's queue.
func (s *Service) Publish(ctx context.Context, userID uuid.UUID, event Event) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if event.Type == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event type is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode event")
	}

	key := s.store.EventQueueKey(userID.String())
	if err := s.store.LPush(ctx, key, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push event")
	}
	if s.ttl > 0 {
		if err := s.store.Expire(ctx, key, s.ttl); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire event queue")
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_type": event.Type,
			"user_id":    userID.String(),
		})
		s.logg.Debug(logCtx, "client event queued")
	}
	return nil
}

// Next pops the oldest undelivered event. It returns (nil, nil) when the
// queue is empty.
func (s *Service) Next(ctx context.Context, userID uuid.UUID) (*Event, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	raw, err := s.store.RPop(ctx, s.store.EventQueueKey(userID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pop event")
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode event")
	}
	return &event, nil
}
