// Package google is the Google Sheets ledger adapter. It authenticates with
// a service account and retries rate-limited calls before giving up.
package google

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "tally/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ ports.ExpenseWriter  = (*Client)(nil)
	_ ports.ExpenseDeleter = (*Client)(nil)
)

// ErrRowNotFound is returned by Delete when no ledger row matches.
var ErrRowNotFound = errors.New("ledger row not found")

// New creates a Sheets client from a service-account credentials file.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Append adds the row at the bottom of the ledger sheet and returns the
// updated range as the row reference.
func (c *Client) Append(ctx context.Context, row ports.Row) (string, error) {
	body := &gsheet.ValueRange{
		Values: [][]any{{row.Date, row.Description, row.Amount, row.Category}},
	}

	var resp *gsheet.AppendValuesResponse
	err := retry.Do(
		func() error {
			r, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName, body).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.RetryIf(isRateLimited),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("append ledger row: %w", err)
	}

	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return "", nil
}

// Delete finds the first row matching date, description, amount and category
// and removes it from the sheet.
func (c *Client) Delete(ctx context.Context, row ports.Row) error {
	values, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	rowIndex := -1
	for i, cells := range values.Values {
		if matchesRow(cells, row) {
			rowIndex = i
			break
		}
	}
	if rowIndex < 0 {
		return fmt.Errorf("%w: %s %q", ErrRowNotFound, row.Date, row.Description)
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	err = retry.Do(
		func() error {
			_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
			return err
		},
		retry.RetryIf(isRateLimited),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("delete ledger row: %w", err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && strings.EqualFold(sheet.Properties.Title, c.sheetName) {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 429
}

func matchesRow(cells []any, row ports.Row) bool {
	if len(cells) < 4 {
		return false
	}
	amount, ok := parseAmountCell(cells[2])
	if !ok {
		return false
	}
	return cellString(cells[0]) == row.Date &&
		cellString(cells[1]) == row.Description &&
		math.Abs(amount-row.Amount) < 0.005 &&
		strings.EqualFold(cellString(cells[3]), row.Category)
}

func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func parseAmountCell(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
