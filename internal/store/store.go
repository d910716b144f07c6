// Package store provides persistence for categorization rules, categories
// and processed transactions. The pipeline depends only on the RecordStore
// interface, not on any specific storage technology.
package store

import (
	"bkowalczyk/pnl-csv/internal/models"
)

// RecordStore abstracts the persistence layer used by the CSV pipeline.
type RecordStore interface {
	// GetAllRules returns all rules ordered by usage count (descending),
	// then creation time (newest first).
	GetAllRules() ([]models.Rule, error)

	// CreateRule stores a new rule. A rule with the same pattern and
	// category already existing is an error.
	CreateRule(pattern, categoryID, categoryName, description string, priority int) (models.Rule, error)

	// IncrementRuleUsage atomically increments and returns the usage count
	// of the rule. A single store call, so concurrent batches cannot lose
	// increments.
	IncrementRuleUsage(ruleID string) (int, error)

	// UpdateRule applies the non-nil fields of patch to an existing rule.
	UpdateRule(ruleID string, patch models.RulePatch) (models.Rule, error)

	// DeleteRule removes a rule by ID.
	DeleteRule(ruleID string) error

	// RuleStats summarizes rule usage across the store.
	RuleStats() (models.RuleStats, error)

	// CategoriesForPrompt returns category names grouped by type for
	// classifier prompts.
	CategoriesForPrompt() (models.CategorySet, error)

	// InsertBatch stores processed transactions for a period and returns
	// the stored count.
	InsertBatch(period models.Period, operations []models.Transaction) (int, error)

	// ExistsForPeriod reports whether any transactions are stored for the period.
	ExistsForPeriod(period models.Period) (bool, error)

	// DeleteForPeriod removes all transactions stored for the period and
	// returns the removed count.
	DeleteForPeriod(period models.Period) (int, error)
}
