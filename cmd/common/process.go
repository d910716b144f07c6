// Package common holds processing helpers shared by the process and save
// commands.
package common

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"bkowalczyk/pnl-csv/internal/common"
	"bkowalczyk/pnl-csv/internal/container"
	"bkowalczyk/pnl-csv/internal/fileutils"
	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
)

// ParsePeriod parses a YYYY-MM string into a Period.
func ParsePeriod(value string) (models.Period, error) {
	var period models.Period
	if _, err := fmt.Sscanf(value, "%d-%d", &period.Year, &period.Month); err != nil {
		return models.Period{}, fmt.Errorf("period must be YYYY-MM, got %q", value)
	}
	if err := period.Validate(); err != nil {
		return models.Period{}, err
	}
	return period, nil
}

// RunPipeline validates and reads the input file, then runs the full
// processing cascade for the given period.
func RunPipeline(ctx context.Context, app *container.Container, inputFile string, period models.Period) (models.ProcessResult, error) {
	if inputFile == "" {
		return models.ProcessResult{}, fmt.Errorf("input file is required (use --input)")
	}

	if _, err := fileutils.ValidateCSVFile(inputFile, app.GetConfig().Upload.MaxSizeBytes); err != nil {
		return models.ProcessResult{}, err
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return models.ProcessResult{}, fmt.Errorf("opening %s: %w", inputFile, err)
	}
	defer f.Close()

	headers, rows, err := common.ReadRawCSV(f)
	if err != nil {
		return models.ProcessResult{}, err
	}

	return app.GetProcessor().ProcessCSV(ctx, headers, rows, period)
}

// WriteResult writes the categorized operations to the output file, or to
// stdout when no output file was given. The file is written through a
// transient sibling and renamed so a failed write never leaves a truncated
// output behind.
func WriteResult(result models.ProcessResult, outputFile string, logger logging.Logger) error {
	if outputFile == "" {
		return common.WriteOperationsCSV(os.Stdout, result.Operations)
	}

	tmp := outputFile + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	if err := common.WriteOperationsCSV(f, result.Operations); err != nil {
		_ = f.Close()
		fileutils.RemoveTransient(tmp, logger)
		return err
	}
	if err := f.Close(); err != nil {
		fileutils.RemoveTransient(tmp, logger)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, outputFile); err != nil {
		fileutils.RemoveTransient(tmp, logger)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

// FormatSummary renders the batch summary for terminal output.
func FormatSummary(result models.ProcessResult) string {
	s := result.Summary
	var sb strings.Builder
	fmt.Fprintf(&sb, "Period: %s\n", result.Period)
	fmt.Fprintf(&sb, "Bank: %s (mapping confidence %.2f)\n", s.Bank, s.MappingConfidence)
	fmt.Fprintf(&sb, "Operations: %d (dropped rows: %d)\n", s.TotalOperations, s.DroppedRows)
	fmt.Fprintf(&sb, "Rule matched: %d, classifier (%s): %d\n", s.RuleMatched, s.CategorizationMethod, s.ClassifierProcessed)
	fmt.Fprintf(&sb, "Currencies: %s\n", strings.Join(s.CurrenciesFound, ", "))
	codes := make([]string, 0, len(s.ExchangeRates))
	for code := range s.ExchangeRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(&sb, "  %s: %s\n", code, s.ExchangeRates[code].String())
	}
	fmt.Fprintf(&sb, "Net total: %s\n", s.TotalReportingAmount.String())
	return sb.String()
}
