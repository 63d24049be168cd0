package tgbot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"jersey-bot/internal/jersey"
)

// Handler consumes one inbound action.
type Handler interface {
	Handle(ctx context.Context, a jersey.Action) error
}

// App is the Telegram side of the bot: it turns updates into actions and
// implements jersey.Messenger on top of the Bot API.
type App struct {
	bot     *tgbotapi.BotAPI
	log     *slog.Logger
	workers int
}

var _ jersey.Messenger = (*App)(nil)

func New(token string, workers int, log *slog.Logger) (*App, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "connect telegram")
	}
	b.Debug = false
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	log.Info("telegram authorized", "username", b.Self.UserName)
	return &App{bot: b, log: log, workers: workers}, nil
}

// Run long-polls updates until ctx is done. Updates are handled by at most
// workers goroutines; a full pool stops polling until a worker frees up.
func (a *App) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	var g errgroup.Group
	g.SetLimit(a.workers)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				_ = g.Wait()
				return errors.New("telegram update channel closed")
			}
			action, ok := actionFromUpdate(upd)
			if !ok {
				continue
			}
			callbackID := ""
			if upd.CallbackQuery != nil {
				callbackID = upd.CallbackQuery.ID
			}
			g.Go(func() error {
				if callbackID != "" {
					if _, err := a.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
						a.log.Debug("ack callback", "error", err)
					}
				}
				if err := h.Handle(ctx, action); err != nil {
					a.log.Warn("deliver response", "user_id", action.UserID, "error", err)
				}
				return nil
			})
		}
	}
}

// ---------- Update conversion ----------

func actionFromUpdate(upd tgbotapi.Update) (jersey.Action, bool) {
	switch {
	case upd.Message != nil:
		return actionFromMessage(upd.Message)
	case upd.CallbackQuery != nil:
		return actionFromCallback(upd.CallbackQuery)
	default:
		return jersey.Action{}, false
	}
}

func actionFromMessage(m *tgbotapi.Message) (jersey.Action, bool) {
	if m.From == nil {
		return jersey.Action{}, false
	}
	a := jersey.Action{UserID: m.From.ID, ChatID: m.From.ID}
	if m.Chat != nil {
		a.ChatID = m.Chat.ID
	}

	switch {
	case m.IsCommand():
		a.Kind = jersey.ActionCommand
		a.Command = strings.ToLower(m.Command())
		a.Args = strings.Fields(m.CommandArguments())
	case len(m.Photo) > 0:
		// sizes are ascending; the last one is the original
		a.Kind = jersey.ActionImage
		a.ImageHandle = m.Photo[len(m.Photo)-1].FileID
		a.Caption = m.Caption
	default:
		// stickers, files and the like arrive as empty text so the
		// active step re-prompts
		a.Kind = jersey.ActionText
		a.Text = m.Text
	}
	return a, true
}

func actionFromCallback(q *tgbotapi.CallbackQuery) (jersey.Action, bool) {
	if q.From == nil {
		return jersey.Action{}, false
	}
	a := jersey.Action{
		Kind:   jersey.ActionChoice,
		UserID: q.From.ID,
		ChatID: q.From.ID,
		Choice: q.Data,
	}
	if q.Message != nil && q.Message.Chat != nil {
		a.ChatID = q.Message.Chat.ID
	}
	return a, true
}

// ---------- Messenger ----------

func keyboard(choices []jersey.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (a *App) SendText(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := a.bot.Send(msg)
	return errors.Wrap(err, "send message")
}

func (a *App) SendChoices(_ context.Context, chatID int64, text string, choices ...jersey.Choice) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(choices) > 0 {
		msg.ReplyMarkup = keyboard(choices)
	}
	_, err := a.bot.Send(msg)
	return errors.Wrap(err, "send choices")
}

func (a *App) SendPhoto(_ context.Context, chatID int64, imageHandle, caption string, choices ...jersey.Choice) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(imageHandle))
	photo.Caption = caption
	if len(choices) > 0 {
		photo.ReplyMarkup = keyboard(choices)
	}
	_, err := a.bot.Send(photo)
	return errors.Wrapf(err, "send photo %s", imageHandle)
}

func (a *App) SendDocument(_ context.Context, chatID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	_, err := a.bot.Send(doc)
	return errors.Wrapf(err, "send document %s", filename)
}
