package models

import "time"

// Rule is a stored pattern-to-category mapping used to deterministically
// categorize matching transaction descriptions. Rules are created explicitly
// by a user action, either directly or from a "correct this categorization"
// flow.
type Rule struct {
	ID           string    `yaml:"id"`
	Pattern      string    `yaml:"pattern"`
	CategoryID   string    `yaml:"category_id"`
	CategoryName string    `yaml:"category_name"`
	Description  string    `yaml:"description"`
	Priority     int       `yaml:"priority"`
	UsageCount   int       `yaml:"usage_count"`
	IsActive     bool      `yaml:"is_active"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// RulePatch carries optional field updates for an existing rule.
// Nil fields are left unchanged.
type RulePatch struct {
	Pattern     *string
	CategoryID  *string
	Description *string
	Priority    *int
	IsActive    *bool
}

// RuleStats summarizes rule usage across the store.
type RuleStats struct {
	TotalRules   int
	TotalUsage   int
	AverageUsage float64
	MostUsed     []Rule
}

// Category is a named income or expense bucket.
type Category struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// CategorySet groups category names by type for classifier prompts.
type CategorySet struct {
	Income  []string
	Expense []string
}

// IsEmpty reports whether no categories are available at all.
func (s CategorySet) IsEmpty() bool {
	return len(s.Income) == 0 && len(s.Expense) == 0
}
