package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/shelfwise/bookstore-backend/pkg/config"
	"github.com/shelfwise/bookstore-backend/pkg/db/models"
	"github.com/shelfwise/bookstore-backend/pkg/logger"
	"github.com/shelfwise/bookstore-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type pinger interface {
	Ping(context.Context) error
}

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.pub.Publish(ctx, msg)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         pinger
	PubSub     pinger
	Repository outboxRepository
	Publisher  publisher
}

type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	db           pinger
	pubsub       pinger
	repo         outboxRepository
	publisher    publisher
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		db:           params.DB,
		pubsub:       params.PubSub,
		repo:         params.Repository,
		publisher:    params.Publisher,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if s.pubsub != nil {
		if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
			return err
		}
	}
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// processBatch drains one batch of pending events. Publish failures are
// recorded per event and do not stop the rest of the batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	var batchErr error
	for _, event := range events {
		fields := s.eventFields(event)
		if err := s.publishEvent(ctx, event); err != nil {
			fields["attempt_count"] = event.AttemptCount + 1
			ctxWithFields := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", err.Error())
			s.logg.Warn(ctxWithFields, "outbox publish failed")
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, fmt.Errorf("mark failure %s: %w", event.ID, markErr)
			}
			batchErr = multierr.Append(batchErr, fmt.Errorf("publish %s: %w", event.ID, err))
			continue
		}

		if markErr := s.repo.MarkPublished(event.ID); markErr != nil {
			return true, fmt.Errorf("mark published %s: %w", event.ID, markErr)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
	}
	return true, batchErr
}

func (s *Service) publishEvent(ctx context.Context, event models.OutboxEvent) error {
	attrs := map[string]string{
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID,
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err == nil && envelope.EventID != "" {
		attrs["event_id"] = envelope.EventID
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := s.publisher.Publish(publishCtx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: attrs,
	})
	if result == nil {
		return fmt.Errorf("publisher returned nil result for event %s", event.ID)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return err
	}
	return nil
}

func (s *Service) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}
