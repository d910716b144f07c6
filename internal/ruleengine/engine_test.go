package ruleengine

import (
	"errors"
	"testing"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRule(t *testing.T, mock *store.MockRecordStore, pattern, category string, usage int) models.Rule {
	t.Helper()
	rule, err := mock.CreateRule(pattern, "cat-"+category, category, "", 5)
	require.NoError(t, err)
	for i := 0; i < usage; i++ {
		_, err := mock.IncrementRuleUsage(rule.ID)
		require.NoError(t, err)
	}
	mock.IncrementedIDs = nil
	rule.UsageCount = usage
	return rule
}

func ops(descriptions ...string) []models.Transaction {
	out := make([]models.Transaction, len(descriptions))
	for i, d := range descriptions {
		out[i] = models.Transaction{RowIndex: i + 1, Description: d}
	}
	return out
}

func TestApplyRulesMatchesAndTagsOperations(t *testing.T) {
	mock := store.NewMockRecordStore()
	rule := seedRule(t, mock, "uber", "Transportation", 0)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	result := engine.ApplyRules(ops("UBER TRIP HELSINKI", "GROCERY STORE"))

	require.Len(t, result, 2)
	assert.True(t, result[0].RuleMatched)
	assert.Equal(t, "Transportation", result[0].Category)
	assert.Equal(t, "cat-Transportation", result[0].CategoryID)
	assert.Equal(t, models.MethodRule, result[0].CategorizationMethod)
	assert.Equal(t, "uber", result[0].RuleUsed)

	assert.False(t, result[1].RuleMatched)
	assert.Empty(t, result[1].Category)

	assert.Equal(t, []string{rule.ID}, mock.IncrementedIDs)
}

func TestApplyRulesExactBeatsSubstring(t *testing.T) {
	mock := store.NewMockRecordStore()
	seedRule(t, mock, "uber", "Transportation", 50)
	exact := seedRule(t, mock, "uber trip helsinki", "Travel", 0)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	result := engine.ApplyRules(ops("UBER TRIP HELSINKI"))

	assert.Equal(t, "Travel", result[0].Category)
	assert.Equal(t, []string{exact.ID}, mock.IncrementedIDs)
}

func TestApplyRulesTieBreaksByUsage(t *testing.T) {
	mock := store.NewMockRecordStore()
	seedRule(t, mock, "store", "Shopping", 1)
	popular := seedRule(t, mock, "grocery", "Groceries", 10)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	result := engine.ApplyRules(ops("GROCERY STORE 24"))

	assert.Equal(t, "Groceries", result[0].Category)
	assert.Equal(t, []string{popular.ID}, mock.IncrementedIDs)
}

func TestApplyRulesIgnoresInactiveRules(t *testing.T) {
	mock := store.NewMockRecordStore()
	rule := seedRule(t, mock, "uber", "Transportation", 0)
	inactive := false
	_, err := mock.UpdateRule(rule.ID, models.RulePatch{IsActive: &inactive})
	require.NoError(t, err)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	result := engine.ApplyRules(ops("UBER TRIP"))

	assert.False(t, result[0].RuleMatched)
}

func TestApplyRulesUsageGrowsAcrossBatches(t *testing.T) {
	mock := store.NewMockRecordStore()
	seedRule(t, mock, "uber", "Transportation", 0)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	engine.ApplyRules(ops("uber one", "uber two"))
	engine.ApplyRules(ops("uber three"))

	assert.Len(t, mock.IncrementedIDs, 3)
	assert.Equal(t, 3, mock.Rules[0].UsageCount)
}

func TestApplyRulesStoreFailureDegradesToNoRules(t *testing.T) {
	mock := store.NewMockRecordStore()
	mock.GetAllRulesError = errors.New("disk gone")
	logger := &logging.MockLogger{}
	engine := NewEngine(mock, time.Minute, logger)

	result := engine.ApplyRules(ops("UBER TRIP"))

	require.Len(t, result, 1)
	assert.False(t, result[0].RuleMatched)
	assert.True(t, logger.HasEntry("WARN", "Failed to load rules, skipping rule-based categorization"))
}

func TestRuleCacheServesWithinTTL(t *testing.T) {
	mock := store.NewMockRecordStore()
	seedRule(t, mock, "uber", "Transportation", 0)
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	engine.ApplyRules(ops("uber"))

	// A rule added behind the engine's back is invisible while the cache
	// window is open.
	seedRule(t, mock, "netflix", "Subscriptions", 0)
	result := engine.ApplyRules(ops("netflix monthly"))
	assert.False(t, result[0].RuleMatched)
}

func TestRuleCacheExpiresAfterTTL(t *testing.T) {
	mock := store.NewMockRecordStore()
	seedRule(t, mock, "uber", "Transportation", 0)
	engine := NewEngine(mock, 5*time.Minute, &logging.MockLogger{})

	start := time.Now()
	engine.now = func() time.Time { return start }
	engine.ApplyRules(ops("uber"))

	seedRule(t, mock, "netflix", "Subscriptions", 0)
	engine.now = func() time.Time { return start.Add(6 * time.Minute) }

	result := engine.ApplyRules(ops("netflix monthly"))
	assert.True(t, result[0].RuleMatched)
}

func TestCreateRuleFromCorrectionInvalidatesCache(t *testing.T) {
	mock := store.NewMockRecordStore()
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	// Prime the cache with an empty rule set.
	engine.ApplyRules(ops("netflix monthly"))

	rule, err := engine.CreateRuleFromCorrection("netflix", "cat-sub", "Subscriptions")
	require.NoError(t, err)
	assert.Equal(t, "netflix", rule.Pattern)

	result := engine.ApplyRules(ops("netflix monthly"))
	assert.True(t, result[0].RuleMatched)
	assert.Equal(t, "Subscriptions", result[0].Category)
}

func TestCreateRuleFromCorrectionStoreError(t *testing.T) {
	mock := store.NewMockRecordStore()
	mock.CreateRuleError = errors.New("readonly store")
	engine := NewEngine(mock, time.Minute, &logging.MockLogger{})

	_, err := engine.CreateRuleFromCorrection("netflix", "cat-sub", "Subscriptions")
	assert.Error(t, err)
}
