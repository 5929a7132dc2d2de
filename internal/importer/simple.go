package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// SimpleParser reads "date,description,amount" files with YYYY-MM-DD dates
// and signed amounts.
type SimpleParser struct{}

const (
	simpleNumFields = 3
	simpleColDate   = 0
	simpleColDesc   = 1
	simpleColAmount = 2
)

// Format returns the parser name.
func (p *SimpleParser) Format() string { return "simple" }

// Parse reads the file, skipping the header row.
func (p *SimpleParser) Parse(r io.Reader) ([]BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = simpleNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading simple CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []BankTransaction
	for i, rec := range records[1:] {
		date, err := model.ParseDate(strings.TrimSpace(rec[simpleColDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date: %w", i+2, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[simpleColAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[simpleColAmount], err)
		}
		desc := strings.TrimSpace(rec[simpleColDesc])
		txns = append(txns, BankTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   makeRef("simple", date, desc),
		})
	}
	numberRefs(txns)
	return txns, nil
}
