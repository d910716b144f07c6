package store

import (
	"fmt"
	"strings"
	"time"

	"bkowalczyk/pnl-csv/internal/models"

	"github.com/google/uuid"
)

// MockRecordStore is an in-memory RecordStore for testing. Error fields, when
// set, are returned by the corresponding methods to exercise degraded paths.
type MockRecordStore struct {
	Rules      []models.Rule
	Categories models.CategorySet
	Batches    map[string][]models.Transaction

	GetAllRulesError error
	CreateRuleError  error
	IncrementError   error
	CategoriesError  error
	InsertBatchError error
	ExistsError      error

	IncrementedIDs []string
}

// NewMockRecordStore creates an empty mock store.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		Batches: make(map[string][]models.Transaction),
	}
}

// GetAllRules returns the configured rules.
func (m *MockRecordStore) GetAllRules() ([]models.Rule, error) {
	if m.GetAllRulesError != nil {
		return nil, m.GetAllRulesError
	}
	out := make([]models.Rule, len(m.Rules))
	copy(out, m.Rules)
	return out, nil
}

// CreateRule appends a rule.
func (m *MockRecordStore) CreateRule(pattern, categoryID, categoryName, description string, priority int) (models.Rule, error) {
	if m.CreateRuleError != nil {
		return models.Rule{}, m.CreateRuleError
	}
	pattern = strings.TrimSpace(pattern)
	for _, r := range m.Rules {
		if r.Pattern == pattern && r.CategoryID == categoryID {
			return models.Rule{}, fmt.Errorf("rule with this pattern and category already exists")
		}
	}
	rule := models.Rule{
		ID:           uuid.NewString(),
		Pattern:      pattern,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Description:  description,
		Priority:     priority,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	m.Rules = append(m.Rules, rule)
	return rule, nil
}

// IncrementRuleUsage bumps the rule's usage count and records the call.
func (m *MockRecordStore) IncrementRuleUsage(ruleID string) (int, error) {
	if m.IncrementError != nil {
		return 0, m.IncrementError
	}
	m.IncrementedIDs = append(m.IncrementedIDs, ruleID)
	for i := range m.Rules {
		if m.Rules[i].ID == ruleID {
			m.Rules[i].UsageCount++
			return m.Rules[i].UsageCount, nil
		}
	}
	return 0, fmt.Errorf("rule not found: %s", ruleID)
}

// UpdateRule applies patch fields in memory.
func (m *MockRecordStore) UpdateRule(ruleID string, patch models.RulePatch) (models.Rule, error) {
	for i := range m.Rules {
		if m.Rules[i].ID != ruleID {
			continue
		}
		if patch.Pattern != nil {
			m.Rules[i].Pattern = *patch.Pattern
		}
		if patch.CategoryID != nil {
			m.Rules[i].CategoryID = *patch.CategoryID
		}
		if patch.Description != nil {
			m.Rules[i].Description = *patch.Description
		}
		if patch.Priority != nil {
			m.Rules[i].Priority = *patch.Priority
		}
		if patch.IsActive != nil {
			m.Rules[i].IsActive = *patch.IsActive
		}
		return m.Rules[i], nil
	}
	return models.Rule{}, fmt.Errorf("rule not found: %s", ruleID)
}

// DeleteRule removes a rule.
func (m *MockRecordStore) DeleteRule(ruleID string) error {
	for i := range m.Rules {
		if m.Rules[i].ID == ruleID {
			m.Rules = append(m.Rules[:i], m.Rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("rule not found: %s", ruleID)
}

// RuleStats summarizes the in-memory rules.
func (m *MockRecordStore) RuleStats() (models.RuleStats, error) {
	stats := models.RuleStats{TotalRules: len(m.Rules)}
	for _, r := range m.Rules {
		stats.TotalUsage += r.UsageCount
	}
	if stats.TotalRules > 0 {
		stats.AverageUsage = float64(stats.TotalUsage) / float64(stats.TotalRules)
	}
	return stats, nil
}

// CategoriesForPrompt returns the configured category set.
func (m *MockRecordStore) CategoriesForPrompt() (models.CategorySet, error) {
	if m.CategoriesError != nil {
		return models.CategorySet{}, m.CategoriesError
	}
	return m.Categories, nil
}

// InsertBatch stores the batch in memory.
func (m *MockRecordStore) InsertBatch(period models.Period, operations []models.Transaction) (int, error) {
	if m.InsertBatchError != nil {
		return 0, m.InsertBatchError
	}
	if m.Batches == nil {
		m.Batches = make(map[string][]models.Transaction)
	}
	m.Batches[period.String()] = append([]models.Transaction{}, operations...)
	return len(operations), nil
}

// ExistsForPeriod reports whether a batch was stored for the period.
func (m *MockRecordStore) ExistsForPeriod(period models.Period) (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	ops, ok := m.Batches[period.String()]
	return ok && len(ops) > 0, nil
}

// DeleteForPeriod removes the period's batch.
func (m *MockRecordStore) DeleteForPeriod(period models.Period) (int, error) {
	ops := m.Batches[period.String()]
	delete(m.Batches, period.String())
	return len(ops), nil
}
