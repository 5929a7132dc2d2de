// Package export renders the transaction log as spreadsheet rows.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

// Header lists the column labels in order. External consumers depend on it.
var Header = []string{"Fecha", "Descripción", "Categoría", "Tipo", "Monto", "Cuenta"}

const (
	numFields = 6
	colDate   = 0
	colDesc   = 1
	colCat    = 2
	colType   = 3
	colAmount = 4
	colAcct   = 5
)

// Row is one exported transaction.
type Row struct {
	Date        string
	Description string
	Category    string
	Type        string
	Amount      string
	Account     string
}

// Rows converts transactions to rows in log order. Unknown accounts are
// shown as N/A.
func Rows(accounts []model.Account, txns []model.Transaction) []Row {
	names := report.AccountNames(accounts)
	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, Row{
			Date:        t.Date.String(),
			Description: t.Description,
			Category:    t.Category,
			Type:        t.Type.Label(),
			Amount:      t.Amount.String(),
			Account:     names.Name(t.AccountID),
		})
	}
	return rows
}

// MarshalRow converts a Row to CSV fields.
func MarshalRow(r Row) []string {
	rec := make([]string, numFields)
	rec[colDate] = r.Date
	rec[colDesc] = r.Description
	rec[colCat] = r.Category
	rec[colType] = r.Type
	rec[colAmount] = r.Amount
	rec[colAcct] = r.Account
	return rec
}

// WriteCSV writes the header and rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the download name for an export made on day.
func FileName(day model.Date) string {
	return "finanzas-" + day.String() + ".csv"
}
