package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodValidate(t *testing.T) {
	tests := []struct {
		name        string
		period      Period
		expectError bool
	}{
		{name: "valid", period: Period{Year: 2026, Month: 1}},
		{name: "december", period: Period{Year: 2026, Month: 12}},
		{name: "month zero", period: Period{Year: 2026, Month: 0}, expectError: true},
		{name: "month thirteen", period: Period{Year: 2026, Month: 13}, expectError: true},
		{name: "year too old", period: Period{Year: 1999, Month: 6}, expectError: true},
		{name: "year too far", period: Period{Year: 2101, Month: 6}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.period.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPeriodString(t *testing.T) {
	assert.Equal(t, "2026-03", Period{Year: 2026, Month: 3}.String())
	assert.Equal(t, "2026-11", Period{Year: 2026, Month: 11}.String())
}

func TestTypeFromAmount(t *testing.T) {
	assert.Equal(t, TypeExpense, TypeFromAmount(decimal.NewFromFloat(-10.50)))
	assert.Equal(t, TypeIncome, TypeFromAmount(decimal.NewFromFloat(10.50)))
	assert.Equal(t, TypeIncome, TypeFromAmount(decimal.Zero))
}
