package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/shelfwise/bookstore-backend/pkg/config"
	"github.com/shelfwise/bookstore-backend/pkg/db/models"
	"github.com/shelfwise/bookstore-backend/pkg/enums"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	events := f.events
	f.events = nil
	return events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type fakePublisher struct {
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error {
	return nil
}

func mustEnvelopePayload(t *testing.T, eventID string) []byte {
	t.Helper()

	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher) *Service {
	t.Helper()

	service, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test"}),
		DB:         okPinger{},
		PubSub:     okPinger{},
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.NewString(),
		Payload:       mustEnvelopePayload(t, "evt-1"),
		CreatedAt:     time.Now().UTC(),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("expected event marked published, got %v", repo.published)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Attributes["event_type"] != "order_created" {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["event_id"] != "evt-1" {
		t.Fatalf("unexpected event_id attribute %q", msg.Attributes["event_id"])
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	first := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventStockRestocked,
		AggregateType: enums.AggregateStockRecord,
		AggregateID:   "64c13ab08edf48a008793cac:shelf-1",
		Payload:       mustEnvelopePayload(t, "evt-1"),
	}
	second := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderFulfilled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.NewString(),
		Payload:       mustEnvelopePayload(t, "evt-2"),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err == nil {
		t.Fatalf("expected batch error for failed publish")
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != first.ID {
		t.Fatalf("expected first event marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != second.ID {
		t.Fatalf("expected second event marked published, got %v", repo.published)
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatalf("expected idle batch")
	}
}

func TestNewServiceDefaults(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{})

	if service.batchSize != defaultBatchSize {
		t.Fatalf("unexpected batch size %d", service.batchSize)
	}
	if service.maxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected max attempts %d", service.maxAttempts)
	}
	if service.pollInterval != defaultPollMs*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", service.pollInterval)
	}
}

func TestNextBackoffCapped(t *testing.T) {
	base := 500 * time.Millisecond
	current := base
	for range 10 {
		current = nextBackoff(current, base, maxBackoff)
	}
	if current != maxBackoff {
		t.Fatalf("expected backoff capped at %s, got %s", maxBackoff, current)
	}
}
