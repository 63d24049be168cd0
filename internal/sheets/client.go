// Package sheets mirrors committed orders into a Google spreadsheet.
package sheets

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	loc           *time.Location
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string, loc *time.Location) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, errors.Wrap(err, "service account json")
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "sheets service")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, loc: loc}, nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

func (c *Client) readRange(ctx context.Context, a1 string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", a1)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A:Z", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return errors.Wrapf(err, "append to %s", sheet)
}
