package jersey

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"jersey-bot/internal/models"
	"jersey-bot/internal/storage"
)

// participant loads the user without creating it. A user that was never
// registered is treated as one who has neither voted nor ordered.
func (b *Bot) participant(ctx context.Context, userID int64) (models.User, error) {
	u, err := b.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{ID: userID}, nil
	}
	return u, err
}

// checkVote rejects late or repeated votes. It never writes.
func (b *Bot) checkVote(ctx context.Context, userID int64) error {
	d, err := b.store.GetDeadlines(ctx)
	if err != nil {
		return err
	}
	if b.now().After(d.VoteDeadline) {
		return &DeadlineError{Gate: GateVote, Deadline: d.VoteDeadline}
	}
	u, err := b.participant(ctx, userID)
	if err != nil {
		return err
	}
	if u.HasVoted {
		return ErrAlreadyVoted
	}
	return nil
}

// admitVote returns the designs userID may vote on.
func (b *Bot) admitVote(ctx context.Context, userID int64) ([]models.Design, error) {
	if err := b.checkVote(ctx, userID); err != nil {
		return nil, err
	}
	return b.store.ListActiveDesigns(ctx)
}

// admitOrder rejects late or repeated orders. It never writes.
func (b *Bot) admitOrder(ctx context.Context, userID int64) error {
	d, err := b.store.GetDeadlines(ctx)
	if err != nil {
		return err
	}
	if b.now().After(d.PaymentDeadline) {
		return &DeadlineError{Gate: GateOrder, Deadline: d.PaymentDeadline}
	}
	u, err := b.participant(ctx, userID)
	if err != nil {
		return err
	}
	if u.HasOrdered {
		return ErrAlreadyOrdered
	}
	return nil
}

func relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
