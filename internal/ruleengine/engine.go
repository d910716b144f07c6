// Package ruleengine matches transaction descriptions against the stored,
// usage-ranked categorization rules. It is the first and highest-priority
// stage of the categorization cascade.
package ruleengine

import (
	"sync"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/store"
)

// defaultRulePriority is assigned to rules created from user corrections.
const defaultRulePriority = 5

// Engine applies categorization rules to transaction batches. The rule set is
// fetched once per batch through a short-lived cache shared by concurrent
// batches; the cache is invalidated whenever a rule is created.
type Engine struct {
	store    store.RecordStore
	logger   logging.Logger
	cacheTTL time.Duration

	mu       sync.RWMutex
	cached   []models.Rule
	cachedAt time.Time

	// now is swappable in tests to drive cache expiry.
	now func() time.Time
}

// NewEngine creates a rule engine over the given record store.
func NewEngine(recordStore store.RecordStore, cacheTTL time.Duration, logger logging.Logger) *Engine {
	return &Engine{
		store:    recordStore,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// ApplyRules tags every operation with the result of rule matching. Matched
// operations get their category, category ID and method set; unmatched ones
// pass through unchanged except for RuleMatched = false. A store failure
// degrades to "no rules applied" for the whole batch rather than a partial
// failure.
func (e *Engine) ApplyRules(operations []models.Transaction) []models.Transaction {
	rules := e.rulesForBatch()

	out := make([]models.Transaction, len(operations))
	matched := 0

	for i, op := range operations {
		out[i] = op
		out[i].RuleMatched = false
		out[i].RuleUsed = ""

		rule, kind, ok := e.bestMatch(op.Description, rules)
		if !ok {
			continue
		}

		matched++
		out[i].RuleMatched = true
		out[i].RuleUsed = rule.Pattern
		out[i].Category = rule.CategoryName
		out[i].CategoryID = rule.CategoryID
		out[i].CategorizationMethod = models.MethodRule

		// Usage is recorded at match time, not at cascade completion.
		e.recordUsage(rule.ID)

		e.logger.WithFields(
			logging.Field{Key: "pattern", Value: rule.Pattern},
			logging.Field{Key: "match_type", Value: kind.String()},
			logging.Field{Key: "category", Value: rule.CategoryName},
		).Debug("Rule matched transaction")
	}

	e.logger.WithFields(
		logging.Field{Key: "matched", Value: matched},
		logging.Field{Key: "total", Value: len(operations)},
	).Info("Applied categorization rules")

	return out
}

// CreateRuleFromCorrection creates a new exact-pattern rule from a user's
// manual recategorization and invalidates the rule cache.
func (e *Engine) CreateRuleFromCorrection(description, categoryID, categoryName string) (models.Rule, error) {
	rule, err := e.store.CreateRule(description, categoryID, categoryName, "", defaultRulePriority)
	if err != nil {
		return models.Rule{}, err
	}

	e.InvalidateCache()

	e.logger.WithFields(
		logging.Field{Key: "pattern", Value: rule.Pattern},
		logging.Field{Key: "category", Value: categoryName},
	).Info("Created rule from user correction")

	return rule, nil
}

// InvalidateCache drops the cached rule set so the next batch re-reads the store.
func (e *Engine) InvalidateCache() {
	e.mu.Lock()
	e.cached = nil
	e.cachedAt = time.Time{}
	e.mu.Unlock()
}

// bestMatch returns the winning rule for a description: strongest match kind
// first, ties broken by higher usage count. Inactive rules never match.
func (e *Engine) bestMatch(description string, rules []models.Rule) (models.Rule, matchKind, bool) {
	var (
		best     models.Rule
		bestKind = matchNone
		found    bool
	)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		kind := matchPattern(description, rule.Pattern)
		if kind == matchNone {
			continue
		}
		if !found || kind < bestKind || (kind == bestKind && rule.UsageCount > best.UsageCount) {
			best = rule
			bestKind = kind
			found = true
		}
	}

	return best, bestKind, found
}

// rulesForBatch returns the active rule set, served from the cache when
// fresh. Store errors degrade to an empty set.
func (e *Engine) rulesForBatch() []models.Rule {
	e.mu.RLock()
	if e.cached != nil && e.now().Sub(e.cachedAt) < e.cacheTTL {
		rules := make([]models.Rule, len(e.cached))
		copy(rules, e.cached)
		e.mu.RUnlock()
		return rules
	}
	e.mu.RUnlock()

	loaded, err := e.store.GetAllRules()
	if err != nil {
		e.logger.WithError(err).Warn("Failed to load rules, skipping rule-based categorization")
		return nil
	}

	e.mu.Lock()
	e.cached = loaded
	e.cachedAt = e.now()
	e.mu.Unlock()

	// Each batch works on its own snapshot of the rule set.
	rules := make([]models.Rule, len(loaded))
	copy(rules, loaded)
	return rules
}

// recordUsage increments the winning rule's usage counter through the store's
// atomic increment and mirrors the new count into the cache so tie-breaking
// stays consistent within the cache window.
func (e *Engine) recordUsage(ruleID string) {
	newCount, err := e.store.IncrementRuleUsage(ruleID)
	if err != nil {
		e.logger.WithError(err).WithField("rule_id", ruleID).Warn("Failed to increment rule usage")
		return
	}

	e.mu.Lock()
	for i := range e.cached {
		if e.cached[i].ID == ruleID {
			e.cached[i].UsageCount = newCount
			break
		}
	}
	e.mu.Unlock()
}
