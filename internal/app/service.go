/**
 * @description
 * This file contains the core business logic for the transfer engine. The
 * `Service` struct orchestrates a money transfer end to end: load both
 * accounts, run the validation policy, apply the balance mutations in
 * memory, and commit them together with the completion event through the
 * repository's transactional outbox.
 *
 * Key features:
 * - No partial state: every failure before the commit leaves both accounts
 *   untouched, and the commit itself is all-or-nothing.
 * - Optimistic concurrency: a version conflict discards the mutated
 *   entities and reruns the whole read-validate-mutate-save cycle under a
 *   bounded retry policy.
 * - The completion event is enqueued in the same database transaction as
 *   the balance changes; a separate relay delivers it to the broker.
 *
 * @dependencies
 * - github.com/google/uuid: For event identifiers.
 * - internal/domain, internal/store: Domain models and the persistence port.
 * - pkg/retry: The bounded-retry decorator.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bankva/transfer-engine/internal/domain"
	"github.com/bankva/transfer-engine/internal/store"
	"github.com/bankva/transfer-engine/pkg/retry"
)

// ErrMissingAccountNumber is returned when a transfer names no source or no
// target account. It is raised before any I/O.
var ErrMissingAccountNumber = errors.New("transfer requires both a source and a target account number")

// Service provides the core business logic for money transfers.
type Service struct {
	repo      store.Repository
	validator TransferValidator
	notifier  Notifier
	retry     retry.Policy

	exchange   string
	routingKey string
}

// NewService creates a new transfer service instance. The retry policy is
// applied to the read-validate-mutate-save cycle; version conflicts are
// added to its retryable kinds here so call sites only configure bounds.
func NewService(repo store.Repository, notifier Notifier, retryPolicy retry.Policy, exchange, routingKey string) *Service {
	retryPolicy.Retryable = append(retryPolicy.Retryable, store.ErrVersionConflict)
	return &Service{
		repo:       repo,
		notifier:   notifier,
		retry:      retryPolicy,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// OpenAccount provisions a new ACTIVE account with a non-negative opening
// balance.
func (s *Service) OpenAccount(ctx context.Context, number domain.AccountNumber, openingBalance domain.Money) (*domain.Account, error) {
	account, err := domain.NewAccount(number, openingBalance)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", number, err)
	}
	log.Printf("level=info component=transfer_service msg=\"account opened\" account=%s balance=%s", number, openingBalance)
	return account, nil
}

// Transfer moves amount from one account to another. On success exactly one
// TransferCompletedEvent is committed to the outbox, and the returned event
// describes it. Rule violations, missing accounts, and nil parameters all
// fail before any mutation is persisted.
func (s *Service) Transfer(ctx context.Context, from, to domain.AccountNumber, amount domain.Money) (*domain.TransferCompletedEvent, error) {
	if from == "" || to == "" {
		return nil, ErrMissingAccountNumber
	}

	event, err := retry.Do(ctx, s.retry, "transfer", func(ctx context.Context) (*domain.TransferCompletedEvent, error) {
		return s.executeTransfer(ctx, from, to, amount)
	})
	if err != nil {
		return nil, err
	}

	// Best effort only: a failed notification never fails the transfer.
	if s.notifier != nil {
		if notifyErr := s.notifyTransfer(ctx, from, to, amount); notifyErr != nil {
			log.Printf("level=warn component=transfer_service msg=\"notification failed\" from=%s to=%s err=%v", from, to, notifyErr)
		}
	}

	return event, nil
}

// executeTransfer runs one attempt of the read-validate-mutate-save cycle.
// The loaded entities are local to the attempt; after a failed save they are
// discarded, never reused, since they may no longer reflect persisted state.
func (s *Service) executeTransfer(ctx context.Context, from, to domain.AccountNumber, amount domain.Money) (*domain.TransferCompletedEvent, error) {
	source, err := s.repo.FindByAccountNumber(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to load source account %s: %w", from, err)
	}
	target, err := s.repo.FindByAccountNumber(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load target account %s: %w", to, err)
	}

	if err := s.validator.Validate(source, target, amount); err != nil {
		return nil, err
	}

	if err := source.Withdraw(amount); err != nil {
		return nil, err
	}
	if err := target.Deposit(amount); err != nil {
		return nil, err
	}

	event := domain.TransferCompletedEvent{
		EventID:     uuid.New(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		CompletedAt: time.Now().UTC(),
	}

	if err := s.repo.SaveTransfer(ctx, source, target, event, s.exchange, s.routingKey); err != nil {
		return nil, err
	}

	log.Printf("level=info component=transfer_service msg=\"transfer committed\" event_id=%s from=%s to=%s amount=%s",
		event.EventID, from, to, amount)
	return &event, nil
}

func (s *Service) notifyTransfer(ctx context.Context, from, to domain.AccountNumber, amount domain.Money) error {
	// Reload for the notification payload; the entities mutated during the
	// transfer are stale once the save committed.
	source, err := s.repo.FindByAccountNumber(ctx, from)
	if err != nil {
		return err
	}
	target, err := s.repo.FindByAccountNumber(ctx, to)
	if err != nil {
		return err
	}
	return s.notifier.SendTransferNotification(ctx, source, target, amount)
}
