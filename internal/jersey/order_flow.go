package jersey

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
	"jersey-bot/internal/session"
	"jersey-bot/internal/storage"
)

func (b *Bot) startOrder(ctx context.Context, a Action) error {
	if err := b.admitOrder(ctx, a.UserID); err != nil {
		return err
	}
	if err := b.begin(a.UserID, session.FlowOrder, session.StepOrderName); err != nil {
		return err
	}
	return b.reply(ctx, a, msgOrderStart)
}

func sizeChoices() []Choice {
	out := make([]Choice, 0, len(models.Sizes))
	for _, sz := range models.Sizes {
		out = append(out, Choice{Label: string(sz), Data: sizeChoicePrefix + string(sz)})
	}
	return out
}

// orderPrompt is what the user sees when asked for step again.
func orderPrompt(step session.Step) (string, []Choice) {
	switch step {
	case session.StepOrderShirtNumber:
		return msgAskShirtNumber, nil
	case session.StepOrderShirtName:
		return msgAskShirtName, nil
	case session.StepOrderSize:
		return msgAskSize, sizeChoices()
	case session.StepOrderReceipt:
		return msgAskReceipt, nil
	default:
		return msgOrderStart, nil
	}
}

func (b *Bot) advanceOrder(ctx context.Context, a Action, sess session.Session) error {
	if sess.Step == session.StepOrderReceipt {
		if a.Kind != ActionImage || a.ImageHandle == "" {
			return reprompt(msgReceiptMissing)
		}
		return b.commitOrder(ctx, a, sess)
	}
	if a.Kind != ActionText {
		prompt, choices := orderPrompt(sess.Step)
		return reprompt(prompt, choices...)
	}

	var (
		next    session.Step
		choices []Choice
		prompt  string
	)
	switch sess.Step {
	case session.StepOrderName:
		name, err := ValidateFullName(a.Text)
		if err != nil {
			return reprompt(msgAskName)
		}
		sess.Order.FullName = name
		next, prompt = session.StepOrderShirtNumber, msgAskShirtNumber
	case session.StepOrderShirtNumber:
		n, err := ParseShirtNumber(a.Text)
		if err != nil {
			return reprompt(msgShirtNumberInvalid)
		}
		sess.Order.ShirtNumber = &n
		next, prompt = session.StepOrderShirtName, msgAskShirtName
	case session.StepOrderShirtName:
		name, err := NormalizeShirtName(a.Text)
		if err != nil {
			return reprompt(msgShirtNameInvalid)
		}
		sess.Order.ShirtName = name
		next, prompt, choices = session.StepOrderSize, msgAskSize, sizeChoices()
	case session.StepOrderSize:
		// typed sizes are accepted as if the button was pressed
		size, ok := models.ParseSize(a.Text)
		if !ok {
			return reprompt(msgAskSize, sizeChoices()...)
		}
		return b.setSize(ctx, a, sess, size)
	default:
		b.sessions.EndIf(a.UserID, sess.Gen)
		return expired(session.FlowOrder)
	}

	sess.Step = next
	if err := b.save(sess); err != nil {
		return err
	}
	if len(choices) > 0 {
		return b.msg.SendChoices(ctx, a.ChatID, prompt, choices...)
	}
	return b.reply(ctx, a, prompt)
}

// chooseSize handles a size button press. Presses without a live order
// session come from a keyboard of a finished or cancelled order.
func (b *Bot) chooseSize(ctx context.Context, a Action) error {
	sess, err := b.sessions.Get(a.UserID)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return expired(session.FlowOrder)
	case err != nil:
		return err
	}
	if sess.Flow != session.FlowOrder {
		return expired(session.FlowOrder)
	}
	if sess.Step != session.StepOrderSize {
		prompt, choices := orderPrompt(sess.Step)
		return reprompt(prompt, choices...)
	}
	raw, _ := strings.CutPrefix(a.Choice, sizeChoicePrefix)
	size, ok := models.ParseSize(raw)
	if !ok {
		return reprompt(msgAskSize, sizeChoices()...)
	}
	return b.setSize(ctx, a, sess, size)
}

func (b *Bot) setSize(ctx context.Context, a Action, sess session.Session, size models.Size) error {
	sess.Order.Size = size
	sess.Step = session.StepOrderReceipt
	if err := b.save(sess); err != nil {
		return err
	}
	return b.reply(ctx, a, msgAskReceipt)
}

// commitOrder re-runs the gate, then writes the order and the has_ordered
// flag in one transaction. The session ends only once the write settled.
func (b *Bot) commitOrder(ctx context.Context, a Action, sess session.Session) error {
	if !sess.Order.Complete() {
		b.sessions.EndIf(a.UserID, sess.Gen)
		return expired(session.FlowOrder)
	}
	if err := b.admitOrder(ctx, a.UserID); err != nil {
		if errors.Is(err, ErrDeadlinePassed) || errors.Is(err, ErrAlreadyOrdered) {
			b.sessions.EndIf(a.UserID, sess.Gen)
		}
		return err
	}
	if cur, err := b.sessions.Get(a.UserID); err != nil || cur.Gen != sess.Gen {
		return expired(session.FlowOrder)
	}

	order, err := b.store.CreateOrder(ctx, models.Order{
		UserID:        a.UserID,
		FullName:      sess.Order.FullName,
		ShirtNumber:   *sess.Order.ShirtNumber,
		ShirtName:     sess.Order.ShirtName,
		Size:          sess.Order.Size,
		ReceiptHandle: a.ImageHandle,
		PaymentTime:   b.now(),
	})
	if errors.Is(err, storage.ErrConflict) {
		b.sessions.EndIf(a.UserID, sess.Gen)
		return ErrAlreadyOrdered
	}
	if err != nil {
		return errors.Wrap(err, "create order")
	}
	b.sessions.EndIf(a.UserID, sess.Gen)

	log := b.logger(ctx)
	log.Info("order committed", "order_id", order.ID, "size", order.Size)
	if b.sink != nil {
		if err := b.sink.AppendOrder(ctx, order); err != nil {
			log.Warn("order mirror failed", "order_id", order.ID, "error", err)
		}
	}
	return b.reply(ctx, a, fmt.Sprintf(msgOrderSuccess,
		order.FullName, order.ShirtNumber, order.ShirtName, order.Size))
}
