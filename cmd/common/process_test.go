package common

import (
	"os"
	"path/filepath"
	"testing"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    models.Period
		expectError bool
	}{
		{name: "valid", input: "2026-01", expected: models.Period{Year: 2026, Month: 1}},
		{name: "december", input: "2026-12", expected: models.Period{Year: 2026, Month: 12}},
		{name: "bad month", input: "2026-13", expectError: true},
		{name: "not a period", input: "January 2026", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := ParsePeriod(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, period)
		})
	}
}

func TestWriteResultToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "categorized.csv")
	result := models.ProcessResult{
		Operations: []models.Transaction{{
			Description:     "Office rent",
			Amount:          decimal.NewFromInt(-2000),
			Currency:        "PLN",
			ConvertedAmount: decimal.NewFromInt(2000),
			ExchangeRate:    decimal.NewFromInt(1),
			Type:            models.TypeExpense,
			Category:        "Rent",
		}},
	}

	require.NoError(t, WriteResult(result, out, &logging.MockLogger{}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Office rent")

	// The transient sibling must not survive a successful write.
	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFormatSummary(t *testing.T) {
	result := models.ProcessResult{
		Period: models.Period{Year: 2026, Month: 1},
		Summary: models.Summary{
			TotalOperations:      4,
			DroppedRows:          1,
			RuleMatched:          1,
			ClassifierProcessed:  3,
			CurrenciesFound:      []string{"PLN", "USD"},
			ExchangeRates:        map[string]decimal.Decimal{"USD": decimal.NewFromFloat(4.2)},
			TotalReportingAmount: decimal.NewFromFloat(3121.85),
			CategorizationMethod: models.MethodKeyword,
			Bank:                 "Unknown",
			MappingConfidence:    0.3,
		},
	}

	out := FormatSummary(result)
	assert.Contains(t, out, "Period: 2026-01")
	assert.Contains(t, out, "Operations: 4 (dropped rows: 1)")
	assert.Contains(t, out, "USD: 4.2")
	assert.Contains(t, out, "Net total: 3121.85")
}
