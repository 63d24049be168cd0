package jersey

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"jersey-bot/internal/models"
	"jersey-bot/internal/session"
	"jersey-bot/internal/storage/sqlite"
)

const (
	adminID int64 = 1
	userID  int64 = 100
)

type sentKind string

const (
	sentText     sentKind = "text"
	sentPhoto    sentKind = "photo"
	sentChoices  sentKind = "choices"
	sentDocument sentKind = "document"
)

type sent struct {
	Kind     sentKind
	ChatID   int64
	Text     string
	Image    string
	Choices  []Choice
	Filename string
	Data     []byte
}

type fakeMessenger struct {
	mu         sync.Mutex
	sent       []sent
	failImages map[string]bool
}

func (m *fakeMessenger) record(s sent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
}

func (m *fakeMessenger) SendText(_ context.Context, chatID int64, text string) error {
	m.record(sent{Kind: sentText, ChatID: chatID, Text: text})
	return nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, chatID int64, handle, caption string, choices ...Choice) error {
	if m.failImages[handle] {
		return errors.Newf("bad file id %q", handle)
	}
	m.record(sent{Kind: sentPhoto, ChatID: chatID, Image: handle, Text: caption, Choices: choices})
	return nil
}

func (m *fakeMessenger) SendChoices(_ context.Context, chatID int64, text string, choices ...Choice) error {
	m.record(sent{Kind: sentChoices, ChatID: chatID, Text: text, Choices: choices})
	return nil
}

func (m *fakeMessenger) SendDocument(_ context.Context, chatID int64, filename string, data []byte, caption string) error {
	m.record(sent{Kind: sentDocument, ChatID: chatID, Filename: filename, Data: data, Text: caption})
	return nil
}

func (m *fakeMessenger) all() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sent...)
}

func (m *fakeMessenger) last(t *testing.T) sent {
	t.Helper()
	all := m.all()
	require.NotEmpty(t, all, "nothing was sent")
	return all[len(all)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (s *recordingSink) AppendOrder(_ context.Context, o models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.orders = append(s.orders, o)
	return nil
}

type fixture struct {
	t        *testing.T
	bot      *Bot
	store    *sqlite.Store
	sessions *session.Store
	msg      *fakeMessenger
	sink     *recordingSink
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "jersey.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := &fakeClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
	ctx := context.Background()
	require.NoError(t, store.SetVoteDeadline(ctx, clock.now.Add(7*24*time.Hour)))
	require.NoError(t, store.SetPaymentDeadline(ctx, clock.now.Add(14*24*time.Hour)))

	f := &fixture{
		t:        t,
		store:    store,
		sessions: session.NewStore(30*time.Minute, clock.Now),
		msg:      &fakeMessenger{failImages: map[string]bool{}},
		sink:     &recordingSink{},
		clock:    clock,
	}
	f.bot, err = New(Options{
		Store:     store,
		Sessions:  f.sessions,
		Messenger: f.msg,
		Sink:      f.sink,
		Admins:    map[int64]bool{adminID: true},
		Location:  time.UTC,
		Now:       clock.Now,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ExportURL: "https://bot.example/export/orders.csv?token=abc",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) handle(a Action) {
	f.t.Helper()
	require.NoError(f.t, f.bot.Handle(context.Background(), a))
}

func (f *fixture) command(user int64, line string) {
	f.t.Helper()
	fields := strings.Fields(line)
	f.handle(Action{Kind: ActionCommand, UserID: user, Command: fields[0], Args: fields[1:]})
}

func (f *fixture) text(user int64, text string) {
	f.t.Helper()
	f.handle(Action{Kind: ActionText, UserID: user, Text: text})
}

func (f *fixture) photo(user int64, handle, caption string) {
	f.t.Helper()
	f.handle(Action{Kind: ActionImage, UserID: user, ImageHandle: handle, Caption: caption})
}

func (f *fixture) choose(user int64, data string) {
	f.t.Helper()
	f.handle(Action{Kind: ActionChoice, UserID: user, Choice: data})
}

func (f *fixture) lastText() string {
	f.t.Helper()
	return f.msg.last(f.t).Text
}

func (f *fixture) addDesign(name, desc, image string) models.Design {
	f.t.Helper()
	d, err := f.store.CreateDesign(context.Background(), models.Design{
		Name:        name,
		Description: desc,
		ImageHandle: image,
		CreatedAt:   f.clock.Now(),
		IsActive:    true,
	})
	require.NoError(f.t, err)
	f.clock.Advance(time.Second)
	return d
}

// placeOrder walks user through the whole order workflow.
func (f *fixture) placeOrder(user int64, name, number, shirtName string, size models.Size, receipt string) {
	f.t.Helper()
	f.command(user, "order")
	f.text(user, name)
	f.text(user, number)
	f.text(user, shirtName)
	f.choose(user, sizeChoicePrefix+string(size))
	f.photo(user, receipt, "")
}
