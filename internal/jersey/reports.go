package jersey

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
)

var csvHeader = []string{"Telegram ID", "Full Name", "Shirt Number", "Shirt Name", "Size", "Payment Time"}

func (b *Bot) showResults(ctx context.Context, a Action) error {
	tally, err := b.store.VoteTally(ctx)
	if err != nil {
		return err
	}
	if tally.Total() == 0 {
		return b.reply(ctx, a, msgNoVotes)
	}

	var sb strings.Builder
	sb.WriteString(msgResultsHeader)
	for _, r := range tally.Results {
		fmt.Fprintf(&sb, msgResultsLine, r.Design.Name, r.Votes)
	}
	if tally.Dangling > 0 {
		fmt.Fprintf(&sb, msgResultsDangling, tally.Dangling)
	}
	fmt.Fprintf(&sb, msgResultsTotal, tally.Total())
	return b.reply(ctx, a, sb.String())
}

func (b *Bot) showOrders(ctx context.Context, a Action) error {
	n, err := b.store.CountOrders(ctx)
	if err != nil {
		return err
	}
	return b.reply(ctx, a, fmt.Sprintf(msgTotalOrders, n))
}

func (b *Bot) exportOrders(ctx context.Context, a Action) error {
	data, err := b.ExportOrdersCSV(ctx)
	if err != nil {
		return err
	}
	name := "orders_export_" + b.now().In(b.loc).Format("20060102_150405") + ".csv"
	return b.msg.SendDocument(ctx, a.ChatID, name, data, msgExportDone)
}

func (b *Bot) exportLink(ctx context.Context, a Action) error {
	if b.exportURL == "" {
		return b.reply(ctx, a, msgExportUnavailable)
	}
	return b.reply(ctx, a, fmt.Sprintf(msgExportLink, b.exportURL))
}

// ExportOrdersCSV renders every order, newest first.
func (b *Bot) ExportOrdersCSV(ctx context.Context) ([]byte, error) {
	orders, err := b.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return OrdersCSV(orders, b.loc)
}

// OrdersCSV writes orders in the given order with payment times in loc.
func OrdersCSV(orders []models.Order, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	for _, o := range orders {
		row := []string{
			strconv.FormatInt(o.UserID, 10),
			o.FullName,
			strconv.Itoa(o.ShirtNumber),
			o.ShirtName,
			string(o.Size),
			o.PaymentTime.In(loc).Format(models.DateLayout),
		}
		if err := w.Write(row); err != nil {
			return nil, errors.Wrapf(err, "write csv row for order %d", o.ID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}
