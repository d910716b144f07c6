// Package pipeline orchestrates the full CSV processing cascade: column
// mapping, row parsing, currency normalization, rule matching and fallback
// classification, followed by an explicit save step.
package pipeline

import (
	"context"
	"strings"
	"time"

	"bkowalczyk/pnl-csv/internal/categorizer"
	"bkowalczyk/pnl-csv/internal/colmap"
	"bkowalczyk/pnl-csv/internal/currencyutils"
	"bkowalczyk/pnl-csv/internal/dateutils"
	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/normalizer"
	"bkowalczyk/pnl-csv/internal/procerror"
	"bkowalczyk/pnl-csv/internal/ruleengine"
	"bkowalczyk/pnl-csv/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fallbackCategories keeps classification working when the store has no
// category definitions yet.
var fallbackCategories = models.CategorySet{
	Income:  []string{"Sales Revenue", "Client Payments", "Other Income"},
	Expense: []string{"Office Supplies", "Rent", "Food & Dining", "Transportation", "Marketing", "Other"},
}

// Processor runs CSV batches through the cascade and persists results.
type Processor struct {
	mapper      *colmap.Analyzer
	normalizer  *normalizer.Normalizer
	engine      *ruleengine.Engine
	classifier  categorizer.Classifier
	recordStore store.RecordStore
	reporting   string
	logger      logging.Logger

	// now is the fallback timestamp source for rows with unusable dates.
	now func() time.Time
}

// NewProcessor wires the cascade stages together.
func NewProcessor(
	mapper *colmap.Analyzer,
	norm *normalizer.Normalizer,
	engine *ruleengine.Engine,
	classifier categorizer.Classifier,
	recordStore store.RecordStore,
	reportingCurrency string,
	logger logging.Logger,
) *Processor {
	return &Processor{
		mapper:      mapper,
		normalizer:  norm,
		engine:      engine,
		classifier:  classifier,
		recordStore: recordStore,
		reporting:   reportingCurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessCSV runs one batch through the full cascade. Rows that cannot be
// parsed are dropped and counted; a batch where every row drops is an input
// error. Nothing is persisted here; SaveResults is a separate call.
func (p *Processor) ProcessCSV(ctx context.Context, headers []string, rows []map[string]string, period models.Period) (models.ProcessResult, error) {
	if err := period.Validate(); err != nil {
		return models.ProcessResult{}, &procerror.InputError{Code: procerror.CodeEmptyInput, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return models.ProcessResult{}, &procerror.InputError{Code: procerror.CodeEmptyInput, Reason: "CSV contains no data rows"}
	}

	mapping := p.mapper.Analyze(ctx, headers, sampleRows(rows, 3))
	p.logger.WithFields(
		logging.Field{Key: "bank", Value: mapping.Bank},
		logging.Field{Key: "confidence", Value: mapping.Confidence},
	).Info("Column mapping resolved")

	operations, dropped := p.parseRows(rows, mapping.Mapping)
	if len(operations) == 0 {
		return models.ProcessResult{}, &procerror.InputError{Code: procerror.CodeNoValidRows, Reason: "no rows could be parsed into operations"}
	}

	normalized, err := p.normalizer.Normalize(ctx, operations)
	if err != nil {
		return models.ProcessResult{}, err
	}

	matched, pending := partition(p.engine.ApplyRules(normalized.Operations))

	var classified []models.Transaction
	if len(pending) > 0 {
		classified, err = p.classifier.Classify(ctx, pending, p.categories())
		if err != nil {
			return models.ProcessResult{}, err
		}
	}

	// Rule-matched operations come first, then classified ones, each group
	// in original row order. Every parsed operation appears exactly once.
	final := append(matched, classified...)

	result := models.ProcessResult{
		Operations: final,
		Period:     period,
		Summary: models.Summary{
			TotalOperations:      len(final),
			DroppedRows:          dropped,
			RuleMatched:          len(matched),
			ClassifierProcessed:  len(classified),
			CurrenciesFound:      normalized.CurrenciesFound,
			ExchangeRates:        normalized.Rates,
			TotalReportingAmount: netTotal(final),
			CategorizationMethod: p.classifier.Name(),
			Bank:                 mapping.Bank,
			MappingConfidence:    mapping.Confidence,
		},
	}

	p.logger.WithFields(
		logging.Field{Key: "period", Value: period.String()},
		logging.Field{Key: "operations", Value: len(final)},
		logging.Field{Key: "dropped", Value: dropped},
		logging.Field{Key: "rule_matched", Value: len(matched)},
	).Info("CSV batch processed")

	return result, nil
}

// SaveResults persists a processed batch. A period that already has data is
// a conflict unless overwrite is set, in which case the existing data is
// replaced in full.
func (p *Processor) SaveResults(operations []models.Transaction, period models.Period, overwrite bool) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, &procerror.InputError{Code: procerror.CodeEmptyInput, Reason: err.Error()}
	}

	exists, err := p.recordStore.ExistsForPeriod(period)
	if err != nil {
		return 0, &procerror.StoreError{Op: "exists check", Err: err}
	}
	if exists {
		if !overwrite {
			return 0, &procerror.PeriodConflictError{Period: period.String()}
		}
		removed, err := p.recordStore.DeleteForPeriod(period)
		if err != nil {
			return 0, &procerror.StoreError{Op: "delete", Err: err}
		}
		p.logger.WithFields(
			logging.Field{Key: "period", Value: period.String()},
			logging.Field{Key: "removed", Value: removed},
		).Info("Replaced existing operations for period")
	}

	saved, err := p.recordStore.InsertBatch(period, operations)
	if err != nil {
		return 0, &procerror.StoreError{Op: "insert", Err: err}
	}
	return saved, nil
}

// CreateRuleFromCorrection records a user correction as a new rule so future
// batches categorize the same description without the classifier.
func (p *Processor) CreateRuleFromCorrection(description, categoryID, categoryName string) (models.Rule, error) {
	return p.engine.CreateRuleFromCorrection(description, categoryID, categoryName)
}

// parseRows turns raw CSV rows into transactions using the resolved mapping.
// A row without a description or a parseable amount is dropped; a bad date
// falls back to the processing time, since a missing date should not cost the
// row its amount and category.
func (p *Processor) parseRows(rows []map[string]string, mapping models.ColumnMapping) ([]models.Transaction, int) {
	var operations []models.Transaction
	dropped := 0

	for i, row := range rows {
		rowIndex := i + 1

		description := strings.TrimSpace(row[mapping.Description])
		if description == "" {
			dropped++
			continue
		}

		amount, err := currencyutils.ParseAmount(row[mapping.Amount])
		if err != nil {
			dropped++
			p.logger.WithError(&procerror.RowError{
				RowIndex: rowIndex,
				Field:    "amount",
				Value:    row[mapping.Amount],
				Err:      err,
			}).Warn("Dropping unparseable row")
			continue
		}

		date, err := dateutils.ParseDate(row[mapping.Date])
		if err != nil {
			date = p.now()
		}

		opType := normalizeType(row[mapping.Type])
		if opType == "" {
			opType = models.TypeFromAmount(amount)
		}

		operations = append(operations, models.Transaction{
			ID:          uuid.NewString(),
			RowIndex:    rowIndex,
			Date:        date,
			Description: description,
			Amount:      amount,
			Currency:    currencyutils.NormalizeCurrencyCode(row[mapping.Currency], p.reporting),
			Type:        opType,
		})
	}

	return operations, dropped
}

// categories loads the classifier category set, degrading to the built-in
// fallback when the store fails or is empty.
func (p *Processor) categories() models.CategorySet {
	categories, err := p.recordStore.CategoriesForPrompt()
	if err != nil {
		p.logger.WithError(err).Warn("Loading categories failed, using fallback set")
		return fallbackCategories
	}
	if categories.IsEmpty() {
		return fallbackCategories
	}
	return categories
}

// normalizeType maps an explicit type column value to income/expense, or
// returns empty when the value carries no signal.
func normalizeType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "income", "credit", "in", "deposit":
		return models.TypeIncome
	case "expense", "debit", "out", "withdrawal", "payment":
		return models.TypeExpense
	}
	return ""
}

func partition(operations []models.Transaction) (matched, pending []models.Transaction) {
	for _, op := range operations {
		if op.RuleMatched {
			matched = append(matched, op)
		} else {
			pending = append(pending, op)
		}
	}
	return matched, pending
}

// netTotal sums converted amounts, income positive and expense negative.
func netTotal(operations []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, op := range operations {
		if op.Type == models.TypeExpense {
			total = total.Sub(op.ConvertedAmount)
		} else {
			total = total.Add(op.ConvertedAmount)
		}
	}
	return total
}

// sampleRows returns up to n leading rows for the mapping oracle prompt.
func sampleRows(rows []map[string]string, n int) []map[string]string {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}
