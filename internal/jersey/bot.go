// Package jersey implements the jersey vote and order workflows: the
// eligibility gate, the per-user conversation engine, voting, admin design
// management and reporting. It talks to users only through a Messenger.
package jersey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"jersey-bot/internal/models"
	"jersey-bot/internal/session"
	"jersey-bot/internal/storage"
)

type Options struct {
	Store     storage.Store
	Sessions  *session.Store
	Messenger Messenger
	Sink      OrderSink // optional
	Admins    map[int64]bool
	Location  *time.Location
	Now       func() time.Time
	Logger    *slog.Logger
	// ExportURL is the signed CSV download link; empty disables /export_link.
	ExportURL string
}

type Bot struct {
	store     storage.Store
	sessions  *session.Store
	msg       Messenger
	sink      OrderSink
	admins    map[int64]bool
	loc       *time.Location
	now       func() time.Time
	log       *slog.Logger
	exportURL string
}

func New(opts Options) (*Bot, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Messenger == nil {
		return nil, errors.New("messenger is required")
	}
	b := &Bot{
		store:     opts.Store,
		sessions:  opts.Sessions,
		msg:       opts.Messenger,
		sink:      opts.Sink,
		admins:    opts.Admins,
		loc:       opts.Location,
		now:       opts.Now,
		log:       opts.Logger,
		exportURL: opts.ExportURL,
	}
	if b.admins == nil {
		b.admins = map[int64]bool{}
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b, nil
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

func (b *Bot) requireAdmin(userID int64) error {
	if !b.isAdmin(userID) {
		return ErrForbidden
	}
	return nil
}

type loggerKey struct{}

func (b *Bot) logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return b.log
}

// Handle processes one action to completion. Workflow errors are rendered to
// the user; the returned error only reports a failed delivery.
func (b *Bot) Handle(ctx context.Context, a Action) (err error) {
	if a.ChatID == 0 {
		a.ChatID = a.UserID
	}
	log := b.log.With("user_id", a.UserID, "action_id", uuid.NewString())
	ctx = context.WithValue(ctx, loggerKey{}, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling action", "panic", r, "command", a.Command)
			err = b.reply(ctx, a, msgGenericError)
		}
	}()

	if derr := b.dispatch(ctx, a); derr != nil {
		return b.renderError(ctx, a, derr)
	}
	return nil
}

func (b *Bot) dispatch(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionCommand:
		return b.handleCommand(ctx, a)
	case ActionChoice:
		return b.handleChoice(ctx, a)
	case ActionImage:
		if cmd, args, ok := captionCommand(a.Caption); ok && cmd == "edit_design" {
			return b.editDesignImage(ctx, a, args)
		}
		return b.advance(ctx, a)
	case ActionText:
		return b.advance(ctx, a)
	default:
		return errors.Newf("unknown action kind %d", a.Kind)
	}
}

func (b *Bot) handleCommand(ctx context.Context, a Action) error {
	switch a.Command {
	case "start":
		return b.start(ctx, a)
	case "help":
		return b.help(ctx, a)
	case "vote":
		return b.startVote(ctx, a)
	case "order":
		return b.startOrder(ctx, a)
	case "cancel":
		return b.cancel(ctx, a)
	case "skip":
		return b.skip(ctx, a)
	}

	// admin-only below
	switch a.Command {
	case "add_design", "list_designs", "edit_design", "delete_design",
		"set_vote_deadline", "set_payment_deadline", "deadlines",
		"results", "orders", "export", "export_link":
		if err := b.requireAdmin(a.UserID); err != nil {
			return err
		}
	default:
		return b.reply(ctx, a, msgUnknownCommand)
	}

	switch a.Command {
	case "add_design":
		return b.startAddDesign(ctx, a)
	case "list_designs":
		return b.listDesigns(ctx, a)
	case "edit_design":
		return b.editDesign(ctx, a)
	case "delete_design":
		return b.deleteDesign(ctx, a)
	case "set_vote_deadline":
		return b.setDeadline(ctx, a, GateVote)
	case "set_payment_deadline":
		return b.setDeadline(ctx, a, GateOrder)
	case "deadlines":
		return b.showDeadlines(ctx, a)
	case "results":
		return b.showResults(ctx, a)
	case "orders":
		return b.showOrders(ctx, a)
	case "export":
		return b.exportOrders(ctx, a)
	default:
		return b.exportLink(ctx, a)
	}
}

func (b *Bot) handleChoice(ctx context.Context, a Action) error {
	switch {
	case strings.HasPrefix(a.Choice, voteChoicePrefix):
		return b.castVote(ctx, a)
	case strings.HasPrefix(a.Choice, sizeChoicePrefix):
		return b.chooseSize(ctx, a)
	default:
		b.logger(ctx).Warn("unknown choice", "data", a.Choice)
		return nil
	}
}

// advance feeds free text or an image to the user's active workflow.
func (b *Bot) advance(ctx context.Context, a Action) error {
	sess, err := b.sessions.Get(a.UserID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return b.reply(ctx, a, msgNoWorkflow)
	case errors.Is(err, session.ErrExpired):
		return expired(sess.Flow)
	case err != nil:
		return err
	}
	switch sess.Flow {
	case session.FlowOrder:
		return b.advanceOrder(ctx, a, sess)
	case session.FlowDesign:
		return b.advanceDesign(ctx, a, sess)
	default:
		b.sessions.End(a.UserID)
		return errors.Newf("unknown flow %q", sess.Flow)
	}
}

func (b *Bot) start(ctx context.Context, a Action) error {
	if err := b.store.EnsureUser(ctx, a.UserID); err != nil {
		return err
	}
	d, err := b.store.GetDeadlines(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	return b.reply(ctx, a, fmt.Sprintf(msgWelcome,
		b.formatTime(d.VoteDeadline), relative(d.VoteDeadline, now),
		b.formatTime(d.PaymentDeadline), relative(d.PaymentDeadline, now),
	))
}

func (b *Bot) help(ctx context.Context, a Action) error {
	text := msgHelpUser
	if b.isAdmin(a.UserID) {
		text += msgHelpAdmin
	}
	return b.reply(ctx, a, text)
}

func (b *Bot) cancel(ctx context.Context, a Action) error {
	if sess, ok := b.sessions.End(a.UserID); ok {
		b.logger(ctx).Info("workflow cancelled", "flow", sess.Flow, "step", sess.Step)
	}
	return b.reply(ctx, a, msgCancelled)
}

// save persists a step transition; a stale session means the workflow was
// cancelled or replaced concurrently.
func (b *Bot) save(sess session.Session) error {
	if err := b.sessions.Save(sess); err != nil {
		if errors.Is(err, session.ErrStale) {
			return expired(sess.Flow)
		}
		return err
	}
	return nil
}

func expired(flow session.Flow) error {
	return &SessionExpiredError{Restart: restartCommand(flow)}
}

func restartCommand(flow session.Flow) string {
	if flow == session.FlowDesign {
		return "/add_design"
	}
	return "/order"
}

// begin starts a workflow or reports the one already in progress.
func (b *Bot) begin(userID int64, flow session.Flow, step session.Step) error {
	cur, err := b.sessions.Begin(userID, flow, step)
	if errors.Is(err, session.ErrBusy) {
		return &WorkflowBusyError{Active: restartCommand(cur.Flow)}
	}
	return err
}

func (b *Bot) reply(ctx context.Context, a Action, text string) error {
	return b.msg.SendText(ctx, a.ChatID, text)
}

func (b *Bot) renderError(ctx context.Context, a Action, err error) error {
	var (
		inputErr    *InputError
		deadlineErr *DeadlineError
		expiredErr  *SessionExpiredError
		busyErr     *WorkflowBusyError
		notFoundErr *NotFoundError
	)
	switch {
	case errors.As(err, &inputErr):
		if len(inputErr.Choices) > 0 {
			return b.msg.SendChoices(ctx, a.ChatID, inputErr.Prompt, inputErr.Choices...)
		}
		return b.reply(ctx, a, inputErr.Prompt)
	case errors.As(err, &deadlineErr):
		text := msgVoteDeadlinePassed
		if deadlineErr.Gate == GateOrder {
			text = msgOrderDeadlinePassed
		}
		return b.reply(ctx, a, fmt.Sprintf(text, b.formatTime(deadlineErr.Deadline)))
	case errors.As(err, &expiredErr):
		return b.reply(ctx, a, fmt.Sprintf(msgSessionExpired, expiredErr.Restart))
	case errors.As(err, &busyErr):
		return b.reply(ctx, a, fmt.Sprintf(msgWorkflowBusy, busyErr.Active))
	case errors.As(err, &notFoundErr):
		return b.reply(ctx, a, fmt.Sprintf(msgDesignNotFound, notFoundErr.ID))
	case errors.Is(err, ErrInvalidFormat):
		return b.reply(ctx, a, fmt.Sprintf(msgDeadlineInvalid, a.Command))
	case errors.Is(err, ErrAlreadyVoted):
		return b.reply(ctx, a, msgDuplicateVote)
	case errors.Is(err, ErrAlreadyOrdered):
		return b.reply(ctx, a, msgDuplicateOrder)
	case errors.Is(err, ErrDesignNotFound):
		return b.reply(ctx, a, msgDesignUnavailable)
	case errors.Is(err, ErrForbidden):
		return b.reply(ctx, a, msgAdminOnly)
	default:
		b.logger(ctx).Error("action failed", "kind", a.Kind, "command", a.Command, "error", err)
		return b.reply(ctx, a, msgGenericError)
	}
}

func (b *Bot) formatTime(t time.Time) string {
	return t.In(b.loc).Format(models.DateLayout)
}

func captionCommand(caption string) (string, []string, bool) {
	fields := strings.Fields(caption)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, fields[1:], true
}
