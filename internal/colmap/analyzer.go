// Package colmap infers which CSV columns hold the date, description,
// amount, currency and type of a bank export. The primary strategy asks the
// AI oracle for a structured assignment; a deterministic heuristic over known
// header synonyms serves as fallback.
package colmap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bkowalczyk/pnl-csv/internal/ai"
	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/textutils"
)

// sampleLimit caps how many rows are embedded in the oracle prompt.
const sampleLimit = 3

// Analyzer infers the column mapping for one CSV batch. The result is
// computed once and reused for every row of the batch.
type Analyzer struct {
	oracle ai.Client
	logger logging.Logger
}

// NewAnalyzer creates an Analyzer. A nil oracle disables the AI path and all
// batches use the heuristic fallback.
func NewAnalyzer(oracle ai.Client, logger logging.Logger) *Analyzer {
	return &Analyzer{
		oracle: oracle,
		logger: logger,
	}
}

// Analyze returns the column mapping for the given headers and sample rows.
// Oracle failures of any kind (unavailable, error, unparseable reply) fall
// back to the heuristic mapping.
func (a *Analyzer) Analyze(ctx context.Context, headers []string, sample []map[string]string) models.MappingResult {
	if a.oracle != nil {
		result, err := a.analyzeWithOracle(ctx, headers, sample)
		if err == nil {
			a.logger.WithFields(
				logging.Field{Key: "bank", Value: result.Bank},
				logging.Field{Key: "confidence", Value: result.Confidence},
			).Info("Column mapping inferred by oracle")
			return result
		}
		a.logger.WithError(err).Warn("Oracle column analysis failed, using heuristic mapping")
	}

	return HeuristicMapping(headers)
}

// oracleReply mirrors the JSON object the oracle is asked to return.
type oracleReply struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Type        string  `json:"type"`
	Bank        string  `json:"bank"`
	Confidence  float64 `json:"confidence"`
}

func (a *Analyzer) analyzeWithOracle(ctx context.Context, headers []string, sample []map[string]string) (models.MappingResult, error) {
	prompt := buildAnalysisPrompt(headers, sample)

	reply, err := a.oracle.Generate(ctx, prompt)
	if err != nil {
		return models.MappingResult{}, fmt.Errorf("oracle call: %w", err)
	}

	jsonText, err := textutils.ExtractJSONObject(reply)
	if err != nil {
		return models.MappingResult{}, fmt.Errorf("oracle reply: %w", err)
	}

	var parsed oracleReply
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return models.MappingResult{}, fmt.Errorf("parsing oracle reply: %w", err)
	}

	// Column names that don't exist in the headers are discarded as unmapped.
	mapping := models.ColumnMapping{
		Date:        validColumn(parsed.Date, headers),
		Description: validColumn(parsed.Description, headers),
		Amount:      validColumn(parsed.Amount, headers),
		Currency:    validColumn(parsed.Currency, headers),
		Type:        validColumn(parsed.Type, headers),
	}

	if !mapping.IsUsable() {
		return models.MappingResult{}, fmt.Errorf("oracle mapping missing description or amount column")
	}

	bank := parsed.Bank
	if bank == "" {
		bank = DetectBank(headers)
	}

	confidence := parsed.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	return models.MappingResult{
		Mapping:    mapping,
		Bank:       bank,
		Confidence: confidence,
		FromOracle: true,
	}, nil
}

// buildAnalysisPrompt embeds the headers and sample rows into the analysis
// request. The oracle is told to prefer original-value columns over
// converted ones so already-converted amounts are not converted twice.
func buildAnalysisPrompt(headers []string, sample []map[string]string) string {
	var b strings.Builder

	b.WriteString("Analyze the structure of a bank CSV export and determine the column mapping.\n\n")
	b.WriteString("HEADERS: " + strings.Join(headers, ", ") + "\n\n")

	b.WriteString("SAMPLE ROWS:\n")
	for i, row := range sample {
		if i >= sampleLimit {
			break
		}
		parts := make([]string, 0, len(headers))
		for _, h := range headers {
			parts = append(parts, fmt.Sprintf("%s: %s", h, row[h]))
		}
		b.WriteString(strings.Join(parts, " | ") + "\n")
	}

	b.WriteString("\nIdentify which columns contain:\n")
	b.WriteString("1. The operation DATE (may be in various formats)\n")
	b.WriteString("2. The operation DESCRIPTION (name, transaction details)\n")
	b.WriteString("3. The ORIGINAL AMOUNT (in the original currency, NOT converted)\n")
	b.WriteString("4. The ORIGINAL CURRENCY (if a separate column exists)\n")
	b.WriteString("5. The operation TYPE (income/expense, if present)\n\n")
	b.WriteString("IMPORTANT: If the file has 'Orig amount' and 'Orig currency' columns, use those for amount and currency.\n")
	b.WriteString("If it has 'Amount' and 'Payment currency' columns, those hold converted values - do NOT use them.\n\n")
	b.WriteString("Reply with ONLY a JSON object in this format:\n")
	b.WriteString(`{"date": "column_name", "description": "column_name", "amount": "column_name", "currency": "column_name_or_null", "type": "column_name_or_null", "bank": "bank_name_if_detected", "confidence": 0.95}` + "\n")
	b.WriteString("Use null for columns that are not present.")

	return b.String()
}

// validColumn returns name if it is one of the actual headers, otherwise "".
func validColumn(name string, headers []string) string {
	if name == "" || strings.EqualFold(name, "null") {
		return ""
	}
	for _, h := range headers {
		if h == name {
			return name
		}
	}
	return ""
}
