package sheets

import (
	"context"
	"time"

	"jersey-bot/internal/models"
)

const SheetOrders = "Orders"

var orderHeader = []interface{}{
	"Order ID", "Telegram ID", "Full Name", "Shirt Number", "Shirt Name", "Size", "Receipt File ID", "Payment Time",
}

// EnsureHeader writes the header row when the Orders sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	values, err := c.readRange(ctx, SheetOrders+"!A1:H1")
	if err != nil {
		return err
	}
	if len(values) > 0 && len(values[0]) > 0 {
		return nil
	}
	return c.appendRow(ctx, SheetOrders, orderHeader)
}

// AppendOrder adds one committed order to the Orders sheet.
func (c *Client) AppendOrder(ctx context.Context, o models.Order) error {
	return c.appendRow(ctx, SheetOrders, orderRow(o, c.loc))
}

func orderRow(o models.Order, loc *time.Location) []interface{} {
	return []interface{}{
		o.ID,
		o.UserID,
		o.FullName,
		o.ShirtNumber,
		o.ShirtName,
		string(o.Size),
		o.ReceiptHandle,
		o.PaymentTime.In(loc).Format(models.DateLayout),
	}
}
