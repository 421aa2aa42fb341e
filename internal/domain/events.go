package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferRequest carries the parameters of a requested transfer. It is
// ephemeral and never persisted.
type TransferRequest struct {
	From   AccountNumber `json:"from"`
	To     AccountNumber `json:"to"`
	Amount Money         `json:"amount"`
}

// TransferCompletedEvent is the message broadcast once per successful
// transfer, after both balance changes are durably committed. It is
// immutable and never replayed by the publisher; broker delivery is
// at-least-once, so consumers dedupe on EventID.
type TransferCompletedEvent struct {
	EventID     uuid.UUID     `json:"event_id"`
	FromAccount AccountNumber `json:"from_account"`
	ToAccount   AccountNumber `json:"to_account"`
	Amount      Money         `json:"amount"`
	CompletedAt time.Time     `json:"completed_at"`
}
