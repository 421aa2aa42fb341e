package store

import (
	"context"
	"errors"

	"github.com/bankva/transfer-engine/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")

	// ErrVersionConflict means a concurrent transfer committed against one of
	// the accounts between load and save. The caller must discard the mutated
	// entities and rerun the whole read-validate-mutate-save cycle.
	ErrVersionConflict = errors.New("account version conflict")
)

// OutboxMessage is one pending event row claimed by the relay.
type OutboxMessage struct {
	ID         int64
	Exchange   string
	RoutingKey string
	Payload    []byte
	Attempts   int
}

// Repository is the persistence port consumed by the transfer engine.
type Repository interface {
	// FindByAccountNumber loads an account, returning ErrAccountNotFound
	// when no row matches.
	FindByAccountNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error)

	// CreateAccount inserts a newly opened account at version zero.
	CreateAccount(ctx context.Context, account *domain.Account) error

	// SaveTransfer persists both updated accounts and enqueues the completion
	// event in a single database transaction. Either all three writes commit
	// or none do. A stale account version aborts with ErrVersionConflict.
	SaveTransfer(ctx context.Context, from, to *domain.Account, event domain.TransferCompletedEvent, exchange, routingKey string) error

	// ClaimOutboxMessages marks up to limit pending event rows as processing
	// and returns them. Rows stuck in processing longer than staleAfterSeconds
	// are reclaimed.
	ClaimOutboxMessages(ctx context.Context, limit, staleAfterSeconds int) ([]OutboxMessage, error)

	// MarkOutboxPublished records successful broker delivery of an event row.
	MarkOutboxPublished(ctx context.Context, id int64) error

	// MarkOutboxFailed returns an event row to pending with a retry delay.
	MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error
}
