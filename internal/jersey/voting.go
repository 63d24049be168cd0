package jersey

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
	"jersey-bot/internal/storage"
)

func (b *Bot) startVote(ctx context.Context, a Action) error {
	designs, err := b.admitVote(ctx, a.UserID)
	if err != nil {
		return err
	}
	if len(designs) == 0 {
		return b.reply(ctx, a, msgNoDesigns)
	}

	log := b.logger(ctx)
	for _, d := range designs {
		button := Choice{
			Label: fmt.Sprintf(msgVoteButton, d.Name),
			Data:  voteChoicePrefix + strconv.FormatInt(d.ID, 10),
		}
		if err := b.msg.SendPhoto(ctx, a.ChatID, d.ImageHandle, voteCaption(d), button); err != nil {
			log.Warn("design image send failed", "design_id", d.ID, "error", err)
			if err := b.reply(ctx, a, fmt.Sprintf(msgVoteImageFailed, d.Name)); err != nil {
				return err
			}
		}
	}
	return b.reply(ctx, a, msgVoteSelect)
}

func voteCaption(d models.Design) string {
	caption := fmt.Sprintf(msgVoteCaption, d.Name)
	if d.Description != "" {
		caption += d.Description + "\n\n"
	}
	return caption + msgVoteCaptionTail
}

// castVote records a vote button press. Eligibility and the design are
// checked again since the buttons may be old.
func (b *Bot) castVote(ctx context.Context, a Action) error {
	designID, ok := parseVoteChoice(a.Choice)
	if !ok {
		return ErrDesignNotFound
	}
	if err := b.checkVote(ctx, a.UserID); err != nil {
		return err
	}
	d, err := b.store.GetDesign(ctx, designID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !d.IsActive) {
		return ErrDesignNotFound
	}
	if err != nil {
		return err
	}

	err = b.store.RecordVote(ctx, a.UserID, d.ID)
	if errors.Is(err, storage.ErrConflict) {
		return ErrAlreadyVoted
	}
	if err != nil {
		return errors.Wrap(err, "record vote")
	}
	b.logger(ctx).Info("vote recorded", "design_id", d.ID)
	return b.reply(ctx, a, fmt.Sprintf(msgVoteRecorded, d.Name))
}
