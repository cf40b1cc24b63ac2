package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/comicverse/comicverse-backend/pkg/config"
	"github.com/comicverse/comicverse-backend/pkg/db/models"
	"github.com/comicverse/comicverse-backend/pkg/enums"
	"github.com/comicverse/comicverse-backend/pkg/logger"
)

type fakePinger struct{}

func (fakePinger) Ping(context.Context) error { return nil }

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error { return nil }

func (fakePubSub) OrdersPublisher() *gcppubsub.Publisher { return nil }

type fakeRepo struct {
	rows      []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (r *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(r.rows) == 0 {
		return nil, nil
	}
	out := r.rows
	r.rows = nil
	return out, nil
}

func (r *fakeRepo) MarkPublished(id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakeResult struct {
	err error
}

func (r fakeResult) Get(context.Context) (string, error) {
	return "msg-1", r.err
}

type fakePublisher struct {
	msgs []*gcppubsub.Message
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.msgs = append(p.msgs, msg)
	return fakeResult{err: p.err}
}

func outboxRow(t *testing.T) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"eventId": uuid.NewString()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub publisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakePinger{},
		PubSub:     fakePubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := outboxRow(t)
	second := outboxRow(t)
	repo := &fakeRepo{rows: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report work")
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 published messages got %d", len(pub.msgs))
	}
	if got := pub.msgs[0].Attributes["event_type"]; got != string(enums.EventOrderCreated) {
		t.Fatalf("unexpected event_type attribute %q", got)
	}
	if got := pub.msgs[0].Attributes["aggregate_id"]; got != first.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute %q", got)
	}
	if len(repo.published) != 2 || repo.published[0] != first.ID || repo.published[1] != second.ID {
		t.Fatalf("expected both rows marked published got %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no failures got %v", repo.failed)
	}
}

func TestProcessBatchMarksFailures(t *testing.T) {
	row := outboxRow(t)
	repo := &fakeRepo{rows: []models.OutboxEvent{row}}
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report work")
	}
	if len(repo.published) != 0 {
		t.Fatalf("expected nothing published got %v", repo.published)
	}
	if len(repo.failed) != 1 || repo.failed[0] != row.ID {
		t.Fatalf("expected row marked failed got %v", repo.failed)
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}
