package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/bankva/transfer-engine/internal/store"
	"github.com/bankva/transfer-engine/pkg/rabbitmq"
)

const (
	defaultBatchSize       = 50
	defaultPollInterval    = 1200 * time.Millisecond
	defaultStaleProcessing = 2 * time.Minute
)

// OutboxDispatcher relays committed completion events from the database
// outbox to the broker. A transfer's event row is written in the same
// transaction as its balance changes, so the relay can never publish an
// event whose transfer did not commit, nor lose one that did.
type OutboxDispatcher struct {
	repo                store.Repository
	publisher           rabbitmq.Publisher
	batchSize           int
	pollInterval        time.Duration
	staleProcessingTime time.Duration
}

func NewOutboxDispatcher(repo store.Repository, publisher rabbitmq.Publisher) *OutboxDispatcher {
	return &OutboxDispatcher{
		repo:                repo,
		publisher:           publisher,
		batchSize:           defaultBatchSize,
		pollInterval:        defaultPollInterval,
		staleProcessingTime: defaultStaleProcessing,
	}
}

// WithBatching overrides the claim batch size and poll interval. Zero or
// negative values keep the defaults.
func (d *OutboxDispatcher) WithBatching(batchSize int, pollInterval time.Duration) *OutboxDispatcher {
	if batchSize > 0 {
		d.batchSize = batchSize
	}
	if pollInterval > 0 {
		d.pollInterval = pollInterval
	}
	return d
}

// Run polls the outbox until ctx is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.flushOnce(ctx); err != nil {
				log.Printf("level=error component=outbox_dispatcher msg=\"flush failed\" err=%v", err)
			}
		}
	}
}

func (d *OutboxDispatcher) flushOnce(ctx context.Context) error {
	staleAfterSeconds := int(d.staleProcessingTime.Seconds())
	messages, err := d.repo.ClaimOutboxMessages(ctx, d.batchSize, staleAfterSeconds)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	for _, message := range messages {
		if err := d.publishMessage(ctx, message); err != nil {
			retryAfter := retryDelaySeconds(message.Attempts)
			_ = d.repo.MarkOutboxFailed(ctx, message.ID, retryAfter, err.Error())
			continue
		}
		if err := d.repo.MarkOutboxPublished(ctx, message.ID); err != nil {
			log.Printf("level=warn component=outbox_dispatcher msg=\"failed to mark message published\" outbox_id=%d err=%v", message.ID, err)
		}
	}
	return nil
}

func (d *OutboxDispatcher) publishMessage(ctx context.Context, message store.OutboxMessage) error {
	var payload interface{}
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return err
	}
	return d.publisher.Publish(ctx, message.Exchange, message.RoutingKey, payload)
}

// retryDelaySeconds backs off exponentially per delivery attempt, capped at
// five minutes.
func retryDelaySeconds(attempt int) int {
	if attempt < 1 {
		return 1
	}
	delay := 1 << min(attempt, 8)
	if delay > 300 {
		return 300
	}
	return delay
}
