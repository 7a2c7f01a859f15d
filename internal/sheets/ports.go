// Package sheets defines the outbound ledger ports. The worker mirrors
// expense writes into a spreadsheet ledger through these interfaces.
package sheets

import "context"

// Row is one ledger line. Amount is in whole currency units because that is
// what a human reads in the spreadsheet.
type Row struct {
	Date        string
	Description string
	Amount      float64
	Category    string
}

type (
	ExpenseWriter interface {
		Append(ctx context.Context, row Row) (rowRef string, err error)
	}

	// ExpenseDeleter removes a previously appended row. The full row data is
	// needed to find it: the ledger has no natural row ids.
	ExpenseDeleter interface {
		Delete(ctx context.Context, row Row) error
	}
)
