package jersey

import (
	"context"

	"jersey-bot/internal/models"
)

type ActionKind int

const (
	ActionCommand ActionKind = iota + 1
	ActionText
	ActionChoice
	ActionImage
)

// Action is one inbound user action, independent of the chat protocol.
type Action struct {
	Kind   ActionKind
	UserID int64
	ChatID int64

	Command string // lower-case, without the leading slash
	Args    []string

	Text   string
	Choice string // callback data of a pressed button

	ImageHandle string
	Caption     string
}

// Choice is one button of a discrete choice set.
type Choice struct {
	Label string
	Data  string
}

// Messenger delivers responses to a conversation.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, imageHandle, caption string, choices ...Choice) error
	SendChoices(ctx context.Context, chatID int64, text string, choices ...Choice) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error
}

// OrderSink receives committed orders, e.g. a spreadsheet mirror.
type OrderSink interface {
	AppendOrder(ctx context.Context, o models.Order) error
}
