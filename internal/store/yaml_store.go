package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// YAMLStore is a file-backed RecordStore. Rules and categories live in single
// YAML files; transactions are stored per period under the transactions
// directory. All mutating operations hold the store mutex, which makes the
// usage-count increment a single atomic store call.
type YAMLStore struct {
	rulesFile       string
	categoriesFile  string
	transactionsDir string
	logger          logging.Logger

	mu sync.Mutex
}

// NewYAMLStore creates a store over the given file locations.
func NewYAMLStore(rulesFile, categoriesFile, transactionsDir string, logger logging.Logger) *YAMLStore {
	return &YAMLStore{
		rulesFile:       rulesFile,
		categoriesFile:  categoriesFile,
		transactionsDir: transactionsDir,
		logger:          logger,
	}
}

type rulesDocument struct {
	Rules []models.Rule `yaml:"rules"`
}

type categoriesDocument struct {
	Categories []models.Category `yaml:"categories"`
}

// storedTransaction is the YAML shape of one persisted operation.
type storedTransaction struct {
	ID              string `yaml:"id"`
	Date            string `yaml:"date"`
	Description     string `yaml:"description"`
	Amount          string `yaml:"amount"`
	Currency        string `yaml:"currency"`
	ConvertedAmount string `yaml:"converted_amount"`
	ExchangeRate    string `yaml:"exchange_rate"`
	Type            string `yaml:"type"`
	Category        string `yaml:"category"`
	CategoryID      string `yaml:"category_id,omitempty"`
	Method          string `yaml:"method"`
}

type transactionsDocument struct {
	Period       string              `yaml:"period"`
	Transactions []storedTransaction `yaml:"transactions"`
}

// GetAllRules returns all rules ordered by usage count then creation time.
func (s *YAMLStore) GetAllRules() ([]models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRules()
}

// CreateRule stores a new rule with a fresh ID and zero usage.
func (s *YAMLStore) CreateRule(pattern, categoryID, categoryName, description string, priority int) (models.Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || categoryID == "" {
		return models.Rule{}, fmt.Errorf("pattern and category ID are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadRules()
	if err != nil {
		return models.Rule{}, err
	}

	for _, r := range rules {
		if r.Pattern == pattern && r.CategoryID == categoryID {
			return models.Rule{}, fmt.Errorf("rule with this pattern and category already exists")
		}
	}

	if description == "" {
		description = fmt.Sprintf("Rule for pattern: %s", pattern)
	}

	rule := models.Rule{
		ID:           uuid.NewString(),
		Pattern:      pattern,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Description:  description,
		Priority:     priority,
		UsageCount:   0,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	rules = append(rules, rule)
	if err := s.saveRules(rules); err != nil {
		return models.Rule{}, err
	}

	s.logger.WithFields(
		logging.Field{Key: "pattern", Value: pattern},
		logging.Field{Key: "category", Value: categoryName},
	).Info("Created categorization rule")

	return rule, nil
}

// IncrementRuleUsage increments the rule's usage count under the store lock
// and returns the new value.
func (s *YAMLStore) IncrementRuleUsage(ruleID string) (int, error) {
	if ruleID == "" {
		return 0, fmt.Errorf("rule ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadRules()
	if err != nil {
		return 0, err
	}

	for i := range rules {
		if rules[i].ID == ruleID {
			rules[i].UsageCount++
			if err := s.saveRules(rules); err != nil {
				return 0, err
			}
			return rules[i].UsageCount, nil
		}
	}

	return 0, fmt.Errorf("rule not found: %s", ruleID)
}

// UpdateRule applies the non-nil patch fields to an existing rule.
func (s *YAMLStore) UpdateRule(ruleID string, patch models.RulePatch) (models.Rule, error) {
	if ruleID == "" {
		return models.Rule{}, fmt.Errorf("rule ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadRules()
	if err != nil {
		return models.Rule{}, err
	}

	for i := range rules {
		if rules[i].ID != ruleID {
			continue
		}
		if patch.Pattern != nil {
			rules[i].Pattern = strings.TrimSpace(*patch.Pattern)
		}
		if patch.CategoryID != nil {
			rules[i].CategoryID = *patch.CategoryID
		}
		if patch.Description != nil {
			rules[i].Description = *patch.Description
		}
		if patch.Priority != nil {
			rules[i].Priority = *patch.Priority
		}
		if patch.IsActive != nil {
			rules[i].IsActive = *patch.IsActive
		}
		if err := s.saveRules(rules); err != nil {
			return models.Rule{}, err
		}
		return rules[i], nil
	}

	return models.Rule{}, fmt.Errorf("rule not found: %s", ruleID)
}

// DeleteRule removes a rule by ID.
func (s *YAMLStore) DeleteRule(ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadRules()
	if err != nil {
		return err
	}

	kept := rules[:0]
	found := false
	for _, r := range rules {
		if r.ID == ruleID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("rule not found: %s", ruleID)
	}

	return s.saveRules(kept)
}

// RuleStats summarizes rule usage across the store.
func (s *YAMLStore) RuleStats() (models.RuleStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.loadRules()
	if err != nil {
		return models.RuleStats{}, err
	}

	stats := models.RuleStats{TotalRules: len(rules)}
	for _, r := range rules {
		stats.TotalUsage += r.UsageCount
	}
	if stats.TotalRules > 0 {
		stats.AverageUsage = float64(stats.TotalUsage) / float64(stats.TotalRules)
	}

	top := len(rules)
	if top > 5 {
		top = 5
	}
	stats.MostUsed = append(stats.MostUsed, rules[:top]...)

	return stats, nil
}

// CategoriesForPrompt returns category names grouped by type. A missing
// categories file yields an empty set, not an error.
func (s *YAMLStore) CategoriesForPrompt() (models.CategorySet, error) {
	data, err := os.ReadFile(s.categoriesFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("file", s.categoriesFile).Warn("Categories file not found")
			return models.CategorySet{}, nil
		}
		return models.CategorySet{}, fmt.Errorf("reading categories file: %w", err)
	}

	var doc categoriesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.CategorySet{}, fmt.Errorf("parsing categories file: %w", err)
	}

	var set models.CategorySet
	for _, c := range doc.Categories {
		switch c.Type {
		case models.TypeIncome:
			set.Income = append(set.Income, c.Name)
		case models.TypeExpense:
			set.Expense = append(set.Expense, c.Name)
		}
	}

	return set, nil
}

// InsertBatch writes the transactions for a period into its YAML file.
func (s *YAMLStore) InsertBatch(period models.Period, operations []models.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.transactionsDir, 0750); err != nil {
		return 0, fmt.Errorf("creating transactions directory: %w", err)
	}

	doc := transactionsDocument{Period: period.String()}
	for _, op := range operations {
		id := op.ID
		if id == "" {
			id = uuid.NewString()
		}
		doc.Transactions = append(doc.Transactions, storedTransaction{
			ID:              id,
			Date:            op.Date.Format("2006-01-02"),
			Description:     op.Description,
			Amount:          op.Amount.String(),
			Currency:        op.Currency,
			ConvertedAmount: op.ConvertedAmount.StringFixed(2),
			ExchangeRate:    op.ExchangeRate.String(),
			Type:            op.Type,
			Category:        op.Category,
			CategoryID:      op.CategoryID,
			Method:          op.CategorizationMethod,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshaling transactions: %w", err)
	}

	if err := os.WriteFile(s.periodFile(period), data, 0600); err != nil {
		return 0, fmt.Errorf("writing transactions file: %w", err)
	}

	return len(doc.Transactions), nil
}

// ExistsForPeriod reports whether a non-empty batch is stored for the period.
func (s *YAMLStore) ExistsForPeriod(period models.Period) (bool, error) {
	info, err := os.Stat(s.periodFile(period))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking period file: %w", err)
	}
	return info.Size() > 0, nil
}

// DeleteForPeriod removes the period's transactions and returns the count removed.
func (s *YAMLStore) DeleteForPeriod(period models.Period) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.periodFile(period)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading period file: %w", err)
	}

	var doc transactionsDocument
	count := 0
	if err := yaml.Unmarshal(data, &doc); err == nil {
		count = len(doc.Transactions)
	}

	if err := os.Remove(path); err != nil {
		return 0, fmt.Errorf("removing period file: %w", err)
	}

	return count, nil
}

func (s *YAMLStore) periodFile(period models.Period) string {
	return filepath.Join(s.transactionsDir, fmt.Sprintf("transactions-%s.yaml", period.String()))
}

func (s *YAMLStore) loadRules() ([]models.Rule, error) {
	data, err := os.ReadFile(s.rulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Rule{}, nil
		}
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var doc rulesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	sortRules(doc.Rules)
	return doc.Rules, nil
}

func (s *YAMLStore) saveRules(rules []models.Rule) error {
	sortRules(rules)

	data, err := yaml.Marshal(rulesDocument{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}

	if dir := filepath.Dir(s.rulesFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating rules directory: %w", err)
		}
	}

	if err := os.WriteFile(s.rulesFile, data, 0600); err != nil {
		return fmt.Errorf("writing rules file: %w", err)
	}

	return nil
}

// sortRules orders by usage count descending, then newest first.
func sortRules(rules []models.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].UsageCount != rules[j].UsageCount {
			return rules[i].UsageCount > rules[j].UsageCount
		}
		return rules[i].CreatedAt.After(rules[j].CreatedAt)
	})
}
