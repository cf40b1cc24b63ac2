package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type fakeQueue struct {
	lists map[string][]string
	ttls  map[string]time.Duration
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{lists: map[string][]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeQueue) LPush(_ context.Context, key string, values ...any) error {
	for _, v := range values {
		f.lists[key] = append([]string{string(v.([]byte))}, f.lists[key]...)
	}
	return nil
}

func (f *fakeQueue) RPop(_ context.Context, key string) (string, error) {
	list := f.lists[key]
	if len(list) == 0 {
		return "", redislib.Nil
	}
	last := list[len(list)-1]
	f.lists[key] = list[:len(list)-1]
	return last, nil
}

func (f *fakeQueue) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func (f *fakeQueue) EventQueueKey(userID string) string {
	return "cv:events:" + userID
}

func TestPublishThenNextDeliversOnce(t *testing.T) {
	queue := newFakeQueue()
	svc, err := NewService(queue, time.Hour, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	userID := uuid.New()

	err = svc.Publish(ctx, userID, Event{
		Type:    TypePaymentResult,
		OrderID: uuid.NewString(),
		Outcome: "success",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	event, err := svc.Next(ctx, userID)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if event == nil || event.Type != TypePaymentResult || event.Outcome != "success" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to be stamped")
	}

	// Second pop drains nothing.
	event, err = svc.Next(ctx, userID)
	if err != nil {
		t.Fatalf("next on empty queue: %v", err)
	}
	if event != nil {
		t.Fatalf("expected one-shot delivery, got %+v", event)
	}
}

func TestNextPreservesPublishOrder(t *testing.T) {
	queue := newFakeQueue()
	svc, err := NewService(queue, 0, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	userID := uuid.New()

	first := uuid.NewString()
	second := uuid.NewString()
	if err := svc.Publish(ctx, userID, Event{Type: TypeOrderStatus, OrderID: first}); err != nil {
		t.Fatalf("publish first: %v", err)
	}
	if err := svc.Publish(ctx, userID, Event{Type: TypeOrderStatus, OrderID: second}); err != nil {
		t.Fatalf("publish second: %v", err)
	}

	event, err := svc.Next(ctx, userID)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if event.OrderID != first {
		t.Fatalf("expected oldest event first, got %+v", event)
	}
}

func TestPublishSetsQueueTTL(t *testing.T) {
	queue := newFakeQueue()
	svc, err := NewService(queue, 30*time.Minute, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	userID := uuid.New()

	if err := svc.Publish(context.Background(), userID, Event{Type: TypePaymentResult}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := queue.ttls[queue.EventQueueKey(userID.String())]; got != 30*time.Minute {
		t.Fatalf("expected ttl 30m, got %v", got)
	}
}

func TestPublishValidation(t *testing.T) {
	queue := newFakeQueue()
	svc, err := NewService(queue, time.Hour, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Publish(context.Background(), uuid.Nil, Event{Type: TypePaymentResult}); err == nil {
		t.Fatal("expected error for nil user id")
	}
	if err := svc.Publish(context.Background(), uuid.New(), Event{}); err == nil {
		t.Fatal("expected error for missing type")
	}
}
