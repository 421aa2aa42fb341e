/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains the SQL for account reads, the atomic two-account transfer commit,
 * and the event outbox that the relay drains.
 *
 * The transfer commit is the critical path: both balance updates carry a
 * version predicate (optimistic concurrency) and the completion event is
 * inserted into `event_outbox` inside the same transaction, so a committed
 * balance change always has its event row and an uncommitted one never does.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: Exact decimal balances.
 * - internal/domain: Domain models used for data transfer.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bankva/transfer-engine/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByAccountNumber retrieves an account by its number.
func (r *PostgresRepository) FindByAccountNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error) {
	query := `
		SELECT account_number, balance::text, currency_code, currency_name, currency_scale, status, version
		FROM accounts
		WHERE account_number = $1
	`

	var (
		account     domain.Account
		numberText  string
		balanceText string
		statusText  string
		currency    domain.Currency
	)
	err := r.db.QueryRow(ctx, query, string(number)).Scan(
		&numberText,
		&balanceText,
		&currency.Code,
		&currency.DisplayName,
		&currency.Scale,
		&statusText,
		&account.Version,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	amount, err := decimal.NewFromString(balanceText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored balance for account %s: %w", number, err)
	}
	account.AccountNumber = domain.AccountNumber(numberText)
	account.Status = domain.AccountStatus(statusText)
	account.Balance = domain.Money{Amount: amount, Currency: currency}
	return &account, nil
}

// CreateAccount inserts a new account row at version zero.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, balance, currency_code, currency_name, currency_scale, status, version)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, 0)
	`
	_, err := r.db.Exec(ctx, query,
		string(account.AccountNumber),
		account.Balance.Amount.String(),
		account.Balance.Currency.Code,
		account.Balance.Currency.DisplayName,
		account.Balance.Currency.Scale,
		string(account.Status),
	)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

// SaveTransfer commits both updated accounts and the completion event as one
// all-or-nothing transaction.
func (r *PostgresRepository) SaveTransfer(ctx context.Context, from, to *domain.Account, event domain.TransferCompletedEvent, exchange, routingKey string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := updateAccountTx(ctx, tx, from); err != nil {
		return err
	}
	if err := updateAccountTx(ctx, tx, to); err != nil {
		return err
	}
	if err := enqueueEventTx(ctx, tx, exchange, routingKey, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// updateAccountTx writes an account's balance and status guarded by the
// version predicate. Zero rows affected means a concurrent writer moved the
// version first.
func updateAccountTx(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET balance = $1::numeric, status = $2, version = version + 1, updated_at = NOW()
		WHERE account_number = $3 AND version = $4
	`,
		account.Balance.Amount.String(),
		string(account.Status),
		string(account.AccountNumber),
		account.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", account.AccountNumber, ErrVersionConflict)
	}
	return nil
}

func enqueueEventTx(ctx context.Context, tx pgx.Tx, exchange, routingKey string, payload interface{}) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_outbox (exchange, routing_key, payload)
		VALUES ($1, $2, $3::jsonb)
	`, strings.TrimSpace(exchange), strings.TrimSpace(routingKey), string(blob))
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

// ClaimOutboxMessages atomically claims a batch of deliverable event rows for
// the relay, reclaiming rows whose previous claimant went stale.
func (r *PostgresRepository) ClaimOutboxMessages(ctx context.Context, limit, staleAfterSeconds int) ([]OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if staleAfterSeconds <= 0 {
		staleAfterSeconds = 120
	}

	query := `
		WITH candidates AS (
			SELECT id
			FROM event_outbox
			WHERE (
				(status = 'pending' AND next_attempt_at <= NOW())
				OR (status = 'processing' AND processing_started_at < NOW() - ($2 * INTERVAL '1 second'))
			)
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE event_outbox AS o
		SET status = 'processing',
			processing_started_at = NOW(),
			attempts = o.attempts + 1
		FROM candidates
		WHERE o.id = candidates.id
		RETURNING o.id, o.exchange, o.routing_key, o.payload::text, o.attempts
	`

	rows, err := r.db.Query(ctx, query, limit, staleAfterSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]OutboxMessage, 0, limit)
	for rows.Next() {
		var (
			msg         OutboxMessage
			payloadText string
		)
		if err := rows.Scan(&msg.ID, &msg.Exchange, &msg.RoutingKey, &payloadText, &msg.Attempts); err != nil {
			return nil, err
		}
		msg.Payload = []byte(payloadText)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkOutboxPublished records successful delivery of an event row.
func (r *PostgresRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE event_outbox
		SET status = 'published',
			published_at = NOW(),
			processing_started_at = NULL,
			last_error = NULL
		WHERE id = $1
	`, id)
	return err
}

// MarkOutboxFailed returns an event row to pending with a retry delay.
func (r *PostgresRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	if len(reason) > 2000 {
		reason = reason[:2000]
	}
	_, err := r.db.Exec(ctx, `
		UPDATE event_outbox
		SET status = 'pending',
			next_attempt_at = NOW() + ($2 * INTERVAL '1 second'),
			processing_started_at = NULL,
			last_error = $3
		WHERE id = $1
	`, id, retryAfterSeconds, reason)
	return err
}

var _ Repository = (*PostgresRepository)(nil)
