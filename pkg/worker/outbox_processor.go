package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/scheduling-api/internal/model"
	"github.com/jwalitptl/scheduling-api/internal/repository"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/messaging"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	Channel      string
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts is the number of publish attempts per event per poll.
	RetryAttempts int
	RetryDelay    time.Duration
	// MaxAttempts is the number of failed polls after which an event is
	// marked failed and no longer picked up.
	MaxAttempts int
}

func (c OutboxProcessorConfig) validate() error {
	switch {
	case c.Channel == "":
		return fmt.Errorf("channel is required")
	case c.BatchSize <= 0:
		return fmt.Errorf("batch size must be greater than 0")
	case c.PollInterval <= 0:
		return fmt.Errorf("poll interval must be greater than 0")
	case c.RetryAttempts <= 0:
		return fmt.Errorf("retry attempts must be greater than 0")
	case c.RetryDelay < 0:
		return fmt.Errorf("retry delay must not be negative")
	case c.MaxAttempts <= 0:
		return fmt.Errorf("max attempts must be greater than 0")
	}
	return nil
}

// OutboxProcessor relays committed outbox events to the broker.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  log,
		metrics: m,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch publishes one batch of pending events.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (processed, failed int, err error) {
	if p.metrics != nil {
		timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
		defer timer.ObserveDuration()
	}

	processed, failed, err = p.repo.ProcessPending(ctx, p.config.BatchSize, p.config.MaxAttempts, func(event *model.OutboxEvent) error {
		return p.publish(ctx, event)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to process pending events: %w", err)
	}

	if p.metrics != nil {
		p.metrics.OutboxEventsProcessed.Add(float64(processed))
		p.metrics.OutboxEventsFailed.Add(float64(failed))
	}
	if processed > 0 || failed > 0 {
		p.logger.Debug("Outbox batch processed", "processed", processed, "failed", failed)
	}
	return processed, failed, nil
}

func (p *OutboxProcessor) publish(ctx context.Context, event *model.OutboxEvent) error {
	data, err := messaging.Message{
		ID:         event.ID,
		Type:       event.EventType,
		OccurredAt: event.CreatedAt,
		Payload:    event.Payload,
	}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.broker.Publish(ctx, p.config.Channel, data)
	})
	if err != nil {
		p.logger.Error(err, "Failed to publish event",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"retry_count", event.RetryCount)
	}
	return err
}

// retry calls fn up to attempts times, sleeping delay between attempts.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
