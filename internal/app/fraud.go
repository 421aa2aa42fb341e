package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"github.com/bankva/transfer-engine/internal/domain"
)

// DefaultFraudThreshold is the suspicious-amount threshold applied when none
// is configured.
var DefaultFraudThreshold = decimal.NewFromInt(100000)

// ErrNilEvent is returned when the checker receives no event at all.
var ErrNilEvent = errors.New("fraud check requires a transfer event")

// EventDeduper suppresses replayed events. MarkProcessed reports whether
// this is the first time the event id has been seen.
type EventDeduper interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// FraudThresholdChecker is a stateless consumer of transfer completion
// events. An amount strictly greater than the threshold is flagged with a
// warning; an amount exactly equal to it is not. The checker never blocks or
// reverses the already-completed transfer.
type FraudThresholdChecker struct {
	threshold decimal.Decimal
	deduper   EventDeduper
}

// NewFraudThresholdChecker builds a checker. A non-positive threshold falls
// back to DefaultFraudThreshold; deduper may be nil when replay suppression
// is unavailable.
func NewFraudThresholdChecker(threshold decimal.Decimal, deduper EventDeduper) *FraudThresholdChecker {
	if !threshold.IsPositive() {
		threshold = DefaultFraudThreshold
	}
	return &FraudThresholdChecker{threshold: threshold, deduper: deduper}
}

// Check inspects one completion event. It returns whether the event was
// flagged as suspicious, and an error only for an absent event.
func (c *FraudThresholdChecker) Check(ctx context.Context, event *domain.TransferCompletedEvent) (bool, error) {
	if event == nil {
		return false, ErrNilEvent
	}

	if c.deduper != nil {
		first, err := c.deduper.MarkProcessed(ctx, event.EventID.String())
		if err != nil {
			// Broker delivery is at-least-once; without the dedupe store we
			// accept the possibility of re-checking a replay.
			log.Printf("level=warn component=fraud_checker msg=\"dedupe unavailable; processing anyway\" event_id=%s err=%v", event.EventID, err)
		} else if !first {
			log.Printf("level=info component=fraud_checker msg=\"duplicate event skipped\" event_id=%s", event.EventID)
			return false, nil
		}
	}

	if event.Amount.Amount.GreaterThan(c.threshold) {
		log.Printf("level=warn component=fraud_checker msg=\"suspicious transfer amount\" event_id=%s from=%s to=%s amount=%s threshold=%s",
			event.EventID, event.FromAccount, event.ToAccount, event.Amount, c.threshold)
		return true, nil
	}
	return false, nil
}

// HandleMessage adapts Check to the broker consumer's binding signature.
// Returning false requeues the delivery.
func (c *FraudThresholdChecker) HandleMessage(body []byte) bool {
	var event domain.TransferCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=error component=fraud_checker msg=\"malformed event payload; dropping\" err=%v", err)
		return true
	}
	if _, err := c.Check(context.Background(), &event); err != nil {
		return false
	}
	return true
}
