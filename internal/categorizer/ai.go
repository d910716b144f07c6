package categorizer

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

// AIClassifier categorizes a batch of operations with a single model call.
// Any failure, from the call itself to an unusable reply, degrades to the
// keyword classifier so the batch always gets categorized.
type AIClassifier struct {
	client   ai.Client
	fallback Classifier
	logger   logging.Logger
}

// NewAIClassifier creates an AIClassifier with the given fallback.
func NewAIClassifier(client ai.Client, fallback Classifier, logger logging.Logger) *AIClassifier {
	return &AIClassifier{
		client:   client,
		fallback: fallback,
		logger:   logger,
	}
}

// Name identifies the classifier in summaries and logs.
func (a *AIClassifier) Name() string {
	return models.MethodAI
}

// aiAssignment is one entry of the model's JSON array reply. Operation
// numbers are 1-based, matching the prompt.
type aiAssignment struct {
	Operation int    `json:"operation"`
	Category  string `json:"category"`
}

// Classify sends the whole batch in one prompt and maps the reply back by
// operation number. Operations the reply skips, and the whole batch when the
// call fails, go through the fallback classifier.
func (a *AIClassifier) Classify(ctx context.Context, operations []models.Transaction, categories models.CategorySet) ([]models.Transaction, error) {
	if len(operations) == 0 {
		return nil, nil
	}

	reply, err := a.client.Generate(ctx, a.buildPrompt(operations, categories))
	if err != nil {
		a.logger.WithError(err).Warn("AI categorization failed, falling back to keyword classifier")
		return a.fallback.Classify(ctx, operations, categories)
	}

	assignments, err := parseAssignments(reply)
	if err != nil {
		a.logger.WithError(err).Warn("Unusable AI reply, falling back to keyword classifier")
		return a.fallback.Classify(ctx, operations, categories)
	}

	byOperation := make(map[int]string, len(assignments))
	for _, as := range assignments {
		if as.Operation >= 1 && as.Operation <= len(operations) && as.Category != "" {
			byOperation[as.Operation] = as.Category
		}
	}

	classified := make([]models.Transaction, len(operations))
	var missed []models.Transaction
	var missedIdx []int
	for i, op := range operations {
		if category, ok := byOperation[i+1]; ok {
			op.Category = category
			op.CategorizationMethod = models.MethodAI
			classified[i] = op
			continue
		}
		missed = append(missed, op)
		missedIdx = append(missedIdx, i)
	}

	if len(missed) > 0 {
		a.logger.WithField("count", len(missed)).Warn("AI reply missed operations, keyword classifier fills the gaps")
		filled, err := a.fallback.Classify(ctx, missed, categories)
		if err != nil {
			return nil, err
		}
		for j, i := range missedIdx {
			classified[i] = filled[j]
		}
	}

	return classified, nil
}

// buildPrompt numbers the operations and lists the allowed categories by
// type. The reply contract is a bare JSON array.
func (a *AIClassifier) buildPrompt(operations []models.Transaction, categories models.CategorySet) string {
	var sb strings.Builder
	sb.WriteString("Categorize the following business operations.\n\n")

	sb.WriteString("Income categories: ")
	sb.WriteString(strings.Join(categories.Income, ", "))
	sb.WriteString("\nExpense categories: ")
	sb.WriteString(strings.Join(categories.Expense, ", "))
	sb.WriteString("\n\nOperations:\n")

	for i, op := range operations {
		fmt.Fprintf(&sb, "%d. %s (%s %s, %s)\n", i+1, op.Description, op.Amount.String(), op.Currency, op.Type)
	}

	sb.WriteString("\nAssign each operation exactly one category from the lists above. ")
	sb.WriteString("Respond with only a JSON array, no markdown:\n")
	sb.WriteString(`[{"operation": 1, "category": "Office Supplies"}]`)
	return sb.String()
}

func parseAssignments(reply string) ([]aiAssignment, error) {
	raw, err := textutils.ExtractJSONArray(reply)
	if err != nil {
		return nil, err
	}
	var assignments []aiAssignment
	if err := json.Unmarshal([]byte(raw), &assignments); err != nil {
		return nil, fmt.Errorf("decoding AI assignments: %w", err)
	}
	return assignments, nil
}
