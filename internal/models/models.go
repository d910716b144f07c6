// Package models defines the core data structures shared by the CSV
// processing pipeline: transactions, column mappings, categorization rules
// and batch summaries.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Categorization method tags recorded on each transaction.
const (
	MethodRule    = "rule"
	MethodKeyword = "keyword"
	MethodAI      = "ai"
)

// Operation type values derived from category type or amount sign.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// CategoryOther is the literal fallback category when no categories are available.
const CategoryOther = "Other"

// Period identifies the reporting month a CSV batch belongs to.
type Period struct {
	Year  int
	Month int
}

// Validate checks that the period describes a real calendar month.
func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 2100 {
		return fmt.Errorf("invalid year: %d", p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid month: %d", p.Month)
	}
	return nil
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Transaction represents one bank operation flowing through the pipeline.
// It is created by the column mapper from a raw CSV row, enriched by the
// currency normalizer and finally tagged with a category by either the rule
// engine or the fallback classifier.
type Transaction struct {
	ID          string
	RowIndex    int
	Date        time.Time
	Description string

	// Amount is the signed amount in the original currency. The sign is a
	// secondary income/expense signal only; the category assignment is
	// authoritative.
	Amount   decimal.Decimal
	Currency string

	// ConvertedAmount is the non-negative amount in the reporting currency.
	ConvertedAmount decimal.Decimal
	ExchangeRate    decimal.Decimal
	IsConverted     bool

	Type                 string
	Category             string
	CategoryID           string
	CategorizationMethod string
	RuleMatched          bool
	RuleUsed             string
}

// TypeFromAmount infers income/expense from the amount sign. This is a
// heuristic secondary signal used only when no explicit type column exists;
// it is kept in one place so it can be swapped without touching the cascade.
func TypeFromAmount(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return TypeExpense
	}
	return TypeIncome
}

// Summary aggregates the outcome of one processed CSV batch.
type Summary struct {
	TotalOperations      int
	DroppedRows          int
	RuleMatched          int
	ClassifierProcessed  int
	CurrenciesFound      []string
	ExchangeRates        map[string]decimal.Decimal
	TotalReportingAmount decimal.Decimal
	CategorizationMethod string
	Bank                 string
	MappingConfidence    float64
}

// ProcessResult is the output of the full CSV processing cascade.
type ProcessResult struct {
	Operations []Transaction
	Summary    Summary
	Period     Period
}
