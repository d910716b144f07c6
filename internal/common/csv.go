// Package common holds the CSV reading and writing helpers shared by the
// CLI commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bkowalczyk/pnl-csv/internal/dateutils"
	"bkowalczyk/pnl-csv/internal/models"

	"github.com/gocarina/gocsv"
)

// ReadRawCSV reads an arbitrary bank export into its header row and one
// map per data row, keyed by header. The column layout is unknown at this
// point; the mapping analyzer works it out later. Rows shorter than the
// header are padded with empty values rather than rejected, since several
// banks emit ragged trailing columns.
func ReadRawCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// exportRow is the flat CSV shape of one categorized operation.
type exportRow struct {
	Date            string `csv:"Date"`
	Description     string `csv:"Description"`
	Amount          string `csv:"Amount"`
	Currency        string `csv:"Currency"`
	ConvertedAmount string `csv:"Converted Amount"`
	ExchangeRate    string `csv:"Exchange Rate"`
	Type            string `csv:"Type"`
	Category        string `csv:"Category"`
	Method          string `csv:"Method"`
}

// WriteOperationsCSV writes categorized operations as CSV.
func WriteOperationsCSV(w io.Writer, operations []models.Transaction) error {
	rows := make([]exportRow, len(operations))
	for i, op := range operations {
		rows[i] = exportRow{
			Date:            dateutils.ToISODate(op.Date),
			Description:     op.Description,
			Amount:          op.Amount.String(),
			Currency:        op.Currency,
			ConvertedAmount: op.ConvertedAmount.String(),
			ExchangeRate:    op.ExchangeRate.String(),
			Type:            op.Type,
			Category:        op.Category,
			Method:          op.CategorizationMethod,
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
