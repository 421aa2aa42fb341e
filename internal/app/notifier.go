package app

import (
	"context"
	"log"

	"github.com/bankva/transfer-engine/internal/domain"
)

// Notifier is the best-effort notification collaborator. Delivery failures
// are the implementation's problem to report; they never affect the outcome
// of a transfer.
type Notifier interface {
	SendTransferNotification(ctx context.Context, from, to *domain.Account, amount domain.Money) error
}

// LogNotifier writes transfer notifications to the process log. It stands in
// for the real notification channel, which lives outside this engine.
type LogNotifier struct{}

func (LogNotifier) SendTransferNotification(ctx context.Context, from, to *domain.Account, amount domain.Money) error {
	log.Printf("level=info component=notifier msg=\"transfer completed\" from=%s to=%s amount=%s",
		from.AccountNumber, to.AccountNumber, amount)
	return nil
}
