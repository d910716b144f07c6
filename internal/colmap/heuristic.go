package colmap

import (
	"strings"

	"bkowalczyk/pnl-csv/internal/models"
)

// Confidence levels for the heuristic path. A recognized bank signature is
// trusted more than a bare synonym match.
const (
	confidenceSignature = 0.9
	confidenceFallback  = 0.3
)

// Header synonym lists per logical field, in English, Polish and German.
// Earlier entries win, so more specific names come first.
var (
	datePatterns = []string{
		"date completed (utc)", "date started (utc)",
		"transaction_date", "operation_date", "data_operacji",
		"date", "data", "datum", "buchungstag",
	}
	descriptionPatterns = []string{
		"transaction_description", "opis_operacji", "szczegoly",
		"description", "opis", "desc", "details", "memo", "buchungstext",
	}
	amountPatterns = []string{
		"orig amount", "kwota_transakcji", "transaction_amount",
		"amount", "kwota", "suma", "value", "wartosc", "betrag",
	}
	currencyPatterns = []string{
		"orig currency", "currency_code", "kod_waluty",
		"currency", "waluta", "curr", "waehrung",
	}
	typePatterns = []string{
		"transaction_type", "operation_type", "typ_operacji",
		"type", "typ",
	}
)

// HeuristicMapping infers the column mapping by matching header names against
// known synonym lists. Given a fixed header set, the result is the same on
// every invocation.
//
// If the headers carry a Revolut export signature (separate original-value
// columns alongside converted ones), the original-value columns are selected
// so already-converted amounts are not converted a second time.
func HeuristicMapping(headers []string) models.MappingResult {
	if hasHeader(headers, "Orig amount") && hasHeader(headers, "Orig currency") {
		return models.MappingResult{
			Mapping: models.ColumnMapping{
				Date:        findColumnByPattern(headers, datePatterns),
				Description: findColumnByPattern(headers, descriptionPatterns),
				Amount:      exactHeader(headers, "Orig amount"),
				Currency:    exactHeader(headers, "Orig currency"),
				Type:        findColumnByPattern(headers, typePatterns),
			},
			Bank:       "Revolut",
			Confidence: confidenceSignature,
		}
	}

	return models.MappingResult{
		Mapping: models.ColumnMapping{
			Date:        findColumnByPattern(headers, datePatterns),
			Description: findColumnByPattern(headers, descriptionPatterns),
			Amount:      findColumnByPattern(headers, amountPatterns),
			Currency:    findColumnByPattern(headers, currencyPatterns),
			Type:        findColumnByPattern(headers, typePatterns),
		},
		Bank:       DetectBank(headers),
		Confidence: confidenceFallback,
	}
}

// DetectBank labels the bank family from header fingerprints.
func DetectBank(headers []string) string {
	joined := strings.ToLower(strings.Join(headers, " "))

	switch {
	case strings.Contains(joined, "orig currency") || strings.Contains(joined, "orig amount") || strings.Contains(joined, "revolut"):
		return "Revolut"
	case strings.Contains(joined, "iban") || strings.Contains(joined, "bic"):
		return "European Bank"
	case strings.Contains(joined, "routing") || strings.Contains(joined, "account number"):
		return "US Bank"
	case strings.Contains(joined, "sort code"):
		return "UK Bank"
	}

	return "Unknown"
}

// findColumnByPattern returns the first header containing any of the
// patterns, tried in pattern order for determinism.
func findColumnByPattern(headers []string, patterns []string) string {
	for _, pattern := range patterns {
		for _, header := range headers {
			if strings.Contains(strings.ToLower(header), pattern) {
				return header
			}
		}
	}
	return ""
}

func hasHeader(headers []string, name string) bool {
	return exactHeader(headers, name) != ""
}

func exactHeader(headers []string, name string) string {
	for _, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			return header
		}
	}
	return ""
}
