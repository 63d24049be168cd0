package jersey

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
	"jersey-bot/internal/session"
)

const noDescription = "No description"

func (b *Bot) startAddDesign(ctx context.Context, a Action) error {
	if err := b.begin(a.UserID, session.FlowDesign, session.StepDesignName); err != nil {
		return err
	}
	return b.reply(ctx, a, msgDesignStart)
}

func (b *Bot) advanceDesign(ctx context.Context, a Action, sess session.Session) error {
	switch sess.Step {
	case session.StepDesignName:
		if a.Kind != ActionText {
			return reprompt(msgDesignNameInvalid)
		}
		name, err := ValidateDesignName(a.Text)
		if err != nil {
			return reprompt(msgDesignNameInvalid)
		}
		sess.Design.Name = name
		sess.Step = session.StepDesignDesc
		if err := b.save(sess); err != nil {
			return err
		}
		return b.reply(ctx, a, msgAskDesignDesc)
	case session.StepDesignDesc:
		desc := strings.TrimSpace(a.Text)
		// only /skip leaves the description empty
		if a.Kind != ActionText || desc == "" {
			return reprompt(msgAskDesignDesc)
		}
		return b.setDescription(ctx, a, sess, desc)
	case session.StepDesignImage:
		if a.Kind != ActionImage || a.ImageHandle == "" {
			return reprompt(msgDesignImageMiss)
		}
		return b.commitDesign(ctx, a, sess)
	default:
		b.sessions.EndIf(a.UserID, sess.Gen)
		return expired(session.FlowDesign)
	}
}

func (b *Bot) setDescription(ctx context.Context, a Action, sess session.Session, desc string) error {
	sess.Design.Description = desc
	sess.Design.HasDescription = true
	sess.Step = session.StepDesignImage
	if err := b.save(sess); err != nil {
		return err
	}
	return b.reply(ctx, a, msgAskDesignImage)
}

// skip leaves the design description empty; it means nothing anywhere else.
func (b *Bot) skip(ctx context.Context, a Action) error {
	sess, err := b.sessions.Get(a.UserID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return b.reply(ctx, a, msgNothingToSkip)
	case errors.Is(err, session.ErrExpired):
		return expired(sess.Flow)
	case err != nil:
		return err
	}
	if sess.Flow != session.FlowDesign || sess.Step != session.StepDesignDesc {
		return b.reply(ctx, a, msgNothingToSkip)
	}
	return b.setDescription(ctx, a, sess, "")
}

func (b *Bot) commitDesign(ctx context.Context, a Action, sess session.Session) error {
	if !sess.Design.Complete() {
		b.sessions.EndIf(a.UserID, sess.Gen)
		return expired(session.FlowDesign)
	}
	if cur, err := b.sessions.Get(a.UserID); err != nil || cur.Gen != sess.Gen {
		return expired(session.FlowDesign)
	}

	d, err := b.store.CreateDesign(ctx, models.Design{
		Name:        sess.Design.Name,
		Description: sess.Design.Description,
		ImageHandle: a.ImageHandle,
		CreatedAt:   b.now(),
		IsActive:    true,
	})
	if err != nil {
		return errors.Wrap(err, "create design")
	}
	b.sessions.EndIf(a.UserID, sess.Gen)
	b.logger(ctx).Info("design added", "design_id", d.ID)

	desc := d.Description
	if desc == "" {
		desc = noDescription
	}
	return b.msg.SendPhoto(ctx, a.ChatID, d.ImageHandle, fmt.Sprintf(msgDesignAdded, d.ID, d.Name, desc))
}
