package common

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bkowalczyk/pnl-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRawCSV(t *testing.T) {
	input := "Date,Description,Amount,Currency\n" +
		"2026-01-05,Office rent,-2000.00,PLN\n" +
		"2026-01-10,Invoice 42,3500.50,PLN\n"

	headers, rows, err := ReadRawCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount", "Currency"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "Office rent", rows[0]["Description"])
	assert.Equal(t, "-2000.00", rows[0]["Amount"])
	assert.Equal(t, "Invoice 42", rows[1]["Description"])
}

func TestReadRawCSVStripsBOM(t *testing.T) {
	input := "\ufeffDate,Amount\n2026-01-05,-10\n"

	headers, _, err := ReadRawCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Date", headers[0])
}

func TestReadRawCSVRaggedRows(t *testing.T) {
	input := "Date,Description,Amount\n2026-01-05,Short row\n"

	headers, rows, err := ReadRawCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, headers, 3)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["Amount"])
}

func TestReadRawCSVEmptyInput(t *testing.T) {
	headers, rows, err := ReadRawCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}

func TestWriteOperationsCSV(t *testing.T) {
	operations := []models.Transaction{
		{
			Date:                 time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Description:          "Adobe license",
			Amount:               decimal.NewFromFloat(-50.75),
			Currency:             "USD",
			ConvertedAmount:      decimal.NewFromFloat(213.15),
			ExchangeRate:         decimal.NewFromFloat(4.2),
			Type:                 models.TypeExpense,
			Category:             "Office Supplies",
			CategorizationMethod: models.MethodKeyword,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOperationsCSV(&buf, operations))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Date")
	assert.Contains(t, lines[0], "Converted Amount")
	assert.Contains(t, lines[1], "2026-01-05")
	assert.Contains(t, lines[1], "Adobe license")
	assert.Contains(t, lines[1], "-50.75")
	assert.Contains(t, lines[1], "213.15")
	assert.Contains(t, lines[1], "Office Supplies")
}
