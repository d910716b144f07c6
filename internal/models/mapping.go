package models

// ColumnMapping maps the five logical transaction fields to actual CSV header
// names. An empty string means the field is unmapped. The mapping is computed
// once per CSV batch from a sample of early rows and applied uniformly to all
// rows of that batch.
type ColumnMapping struct {
	Date        string
	Description string
	Amount      string
	Currency    string
	Type        string
}

// IsUsable reports whether the mapping covers the minimum fields required to
// build a transaction from a row.
func (m ColumnMapping) IsUsable() bool {
	return m.Description != "" && m.Amount != ""
}

// MappingResult is the outcome of column-mapping inference for one batch.
type MappingResult struct {
	Mapping    ColumnMapping
	Bank       string
	Confidence float64

	// FromOracle is true when the mapping came from the AI oracle rather
	// than the heuristic fallback.
	FromOracle bool
}
