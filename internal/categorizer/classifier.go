// Package categorizer assigns categories to operations that no rule
// matched. A keyword classifier provides fast deterministic results and
// serves as the fallback for the AI classifier.
package categorizer

import (
	"context"
	"strings"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
)

// Classifier assigns a category to each operation in the batch. The returned
// slice is the same length and order as the input.
type Classifier interface {
	Classify(ctx context.Context, operations []models.Transaction, categories models.CategorySet) ([]models.Transaction, error)
	Name() string
}

// keywordCategory pairs description keywords with the category they imply.
type keywordCategory struct {
	keywords []string
	category string
}

// keywordTable is checked in order; the first keyword hit wins.
var keywordTable = []keywordCategory{
	{keywords: []string{"food", "restaurant", "cafe", "coffee", "grocery"}, category: "Food & Dining"},
	{keywords: []string{"transport", "uber", "taxi", "train", "fuel"}, category: "Transportation"},
	{keywords: []string{"office", "supplies", "stationery"}, category: "Office Supplies"},
	{keywords: []string{"marketing", "ads", "advertising"}, category: "Marketing & Advertising"},
}

// KeywordClassifier categorizes by description keywords. It never fails and
// needs no external services.
type KeywordClassifier struct {
	logger logging.Logger
}

// NewKeywordClassifier creates a KeywordClassifier.
func NewKeywordClassifier(logger logging.Logger) *KeywordClassifier {
	return &KeywordClassifier{logger: logger}
}

// Name identifies the classifier in summaries and logs.
func (k *KeywordClassifier) Name() string {
	return models.MethodKeyword
}

// Classify assigns a category to every operation. Operations whose
// description matches no keyword fall back to the first category of the
// matching type, or to the generic category when the set is empty.
func (k *KeywordClassifier) Classify(_ context.Context, operations []models.Transaction, categories models.CategorySet) ([]models.Transaction, error) {
	classified := make([]models.Transaction, len(operations))
	for i, op := range operations {
		op.Category = k.categorize(op, categories)
		op.CategorizationMethod = models.MethodKeyword
		classified[i] = op
	}
	return classified, nil
}

func (k *KeywordClassifier) categorize(op models.Transaction, categories models.CategorySet) string {
	desc := strings.ToLower(op.Description)

	if op.Type == models.TypeIncome || strings.Contains(desc, "income") || strings.Contains(desc, "revenue") {
		if len(categories.Income) > 0 {
			return categories.Income[0]
		}
		return models.CategoryOther
	}

	for _, entry := range keywordTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(desc, keyword) {
				return entry.category
			}
		}
	}

	if len(categories.Expense) > 0 {
		return categories.Expense[0]
	}
	return models.CategoryOther
}
