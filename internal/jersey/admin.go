package jersey

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
	"jersey-bot/internal/storage"
	"jersey-bot/internal/util"
)

func (b *Bot) listDesigns(ctx context.Context, a Action) error {
	designs, err := b.store.ListActiveDesigns(ctx)
	if err != nil {
		return err
	}
	if len(designs) == 0 {
		return b.reply(ctx, a, msgNoDesignsListed)
	}

	var sb strings.Builder
	sb.WriteString(msgDesignListHeader)
	for i, d := range designs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, d.Name)
		if d.Description != "" {
			fmt.Fprintf(&sb, "   📝 %s\n", truncate(d.Description, designDescBrief))
		}
		fmt.Fprintf(&sb, "   🆔 ID: %d\n\n", d.ID)
	}
	sb.WriteString(msgDesignListFooter)
	return b.reply(ctx, a, sb.String())
}

// lookupDesign resolves an admin-supplied design ID, active or not.
func (b *Bot) lookupDesign(ctx context.Context, raw string) (models.Design, error) {
	id, ok := parseDesignID(raw)
	if !ok {
		return models.Design{}, reprompt(msgInvalidDesignID)
	}
	d, err := b.store.GetDesign(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Design{}, &NotFoundError{ID: id}
	}
	return d, err
}

func (b *Bot) updateDesign(ctx context.Context, id int64, patch models.DesignPatch) error {
	err := b.store.UpdateDesign(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return err
}

// deleteDesign hides a design from voting. Deleting an inactive design is
// a no-op that still succeeds.
func (b *Bot) deleteDesign(ctx context.Context, a Action) error {
	if len(a.Args) == 0 {
		return b.reply(ctx, a, msgDeleteUsage)
	}
	d, err := b.lookupDesign(ctx, a.Args[0])
	if err != nil {
		return err
	}
	inactive := false
	if err := b.updateDesign(ctx, d.ID, models.DesignPatch{IsActive: &inactive}); err != nil {
		return err
	}
	b.logger(ctx).Info("design deleted", "design_id", d.ID)
	return b.reply(ctx, a, fmt.Sprintf(msgDesignDeleted, d.Name))
}

func (b *Bot) editDesign(ctx context.Context, a Action) error {
	if len(a.Args) < 2 {
		return b.reply(ctx, a, msgEditUsage)
	}
	d, err := b.lookupDesign(ctx, a.Args[0])
	if err != nil {
		return err
	}
	field := strings.ToLower(a.Args[1])
	value := strings.Join(a.Args[2:], " ")

	var patch models.DesignPatch
	switch field {
	case "name":
		name, err := ValidateDesignName(value)
		if err != nil {
			return reprompt(msgDesignNameInvalid)
		}
		patch.Name = &name
	case "desc", "description":
		desc := strings.TrimSpace(value)
		patch.Description = &desc
	case "order":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return reprompt(msgEditOrderInvalid)
		}
		patch.DisplayOrder = &n
	case "active":
		active, ok := util.ParseYesNo(value)
		if !ok {
			return reprompt(msgEditActiveInvalid)
		}
		patch.IsActive = &active
	case "image":
		return b.reply(ctx, a, fmt.Sprintf(msgEditImageUsage, d.ID))
	default:
		return b.reply(ctx, a, msgEditUsage)
	}

	if err := b.updateDesign(ctx, d.ID, patch); err != nil {
		return err
	}
	b.logger(ctx).Info("design updated", "design_id", d.ID, "field", field)
	return b.reply(ctx, a, fmt.Sprintf(msgDesignUpdated, d.ID, field))
}

// editDesignImage handles a photo captioned "/edit_design <id> image".
func (b *Bot) editDesignImage(ctx context.Context, a Action, args []string) error {
	if err := b.requireAdmin(a.UserID); err != nil {
		return err
	}
	if len(args) == 0 || (len(args) > 1 && strings.ToLower(args[1]) != "image") {
		return b.reply(ctx, a, msgEditUsage)
	}
	d, err := b.lookupDesign(ctx, args[0])
	if err != nil {
		return err
	}
	handle := a.ImageHandle
	if err := b.updateDesign(ctx, d.ID, models.DesignPatch{ImageHandle: &handle}); err != nil {
		return err
	}
	b.logger(ctx).Info("design updated", "design_id", d.ID, "field", "image")
	return b.reply(ctx, a, fmt.Sprintf(msgDesignUpdated, d.ID, "image"))
}

func (b *Bot) setDeadline(ctx context.Context, a Action, gate Gate) error {
	if len(a.Args) == 0 {
		return b.reply(ctx, a, fmt.Sprintf(msgDeadlineUsage, a.Command, a.Command))
	}
	t, err := ParseDeadline(strings.Join(a.Args, " "), b.loc)
	if err != nil {
		return err
	}

	text := msgVoteDeadlineSet
	if gate == GateOrder {
		err = b.store.SetPaymentDeadline(ctx, t)
		text = msgPayDeadlineSet
	} else {
		err = b.store.SetVoteDeadline(ctx, t)
	}
	if err != nil {
		return err
	}
	b.logger(ctx).Info("deadline updated", "gate", gate, "deadline", t)
	return b.reply(ctx, a, fmt.Sprintf(text, b.formatTime(t)))
}

func (b *Bot) showDeadlines(ctx context.Context, a Action) error {
	d, err := b.store.GetDeadlines(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	return b.reply(ctx, a, fmt.Sprintf(msgDeadlines,
		b.formatTime(d.VoteDeadline), relative(d.VoteDeadline, now),
		b.formatTime(d.PaymentDeadline), relative(d.PaymentDeadline, now),
	))
}
