package categorizer

import (
	"context"
	"errors"
	"testing"

	"bkowalczyk/pnl-csv/internal/ai"
	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAIClassifier(client *ai.MockClient) (*AIClassifier, *logging.MockLogger) {
	logger := &logging.MockLogger{}
	keyword := NewKeywordClassifier(logger)
	return NewAIClassifier(client, keyword, logger), logger
}

func TestAIClassifierName(t *testing.T) {
	classifier, _ := newAIClassifier(&ai.MockClient{})
	assert.Equal(t, models.MethodAI, classifier.Name())
}

func TestAIClassifierAssignsByOperationNumber(t *testing.T) {
	client := &ai.MockClient{Responses: []string{
		`Sure! Here are the categories:
[{"operation": 1, "category": "Rent"}, {"operation": 2, "category": "Sales Revenue"}]`,
	}}
	classifier, _ := newAIClassifier(client)

	out, err := classifier.Classify(context.Background(), []models.Transaction{
		{Description: "Biuro najem", Type: models.TypeExpense},
		{Description: "Invoice 42", Type: models.TypeIncome},
	}, testCategories)
	require.NoError(t, err)

	assert.Equal(t, "Rent", out[0].Category)
	assert.Equal(t, models.MethodAI, out[0].CategorizationMethod)
	assert.Equal(t, "Sales Revenue", out[1].Category)

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "1. Biuro najem")
	assert.Contains(t, client.Prompts[0], "2. Invoice 42")
	assert.Contains(t, client.Prompts[0], "Office Supplies, Rent, Other")
}

func TestAIClassifierErrorFallsBackToKeyword(t *testing.T) {
	client := &ai.MockClient{Err: errors.New("model overloaded")}
	classifier, logger := newAIClassifier(client)

	out, err := classifier.Classify(context.Background(), []models.Transaction{
		{Description: "uber trip", Type: models.TypeExpense},
	}, testCategories)
	require.NoError(t, err)

	assert.Equal(t, "Transportation", out[0].Category)
	assert.Equal(t, models.MethodKeyword, out[0].CategorizationMethod)
	assert.True(t, logger.HasEntry("WARN", "AI categorization failed, falling back to keyword classifier"))
}

func TestAIClassifierGarbageReplyFallsBack(t *testing.T) {
	client := &ai.MockClient{Responses: []string{"no json in this reply"}}
	classifier, logger := newAIClassifier(client)

	out, err := classifier.Classify(context.Background(), []models.Transaction{
		{Description: "restaurant", Type: models.TypeExpense},
	}, testCategories)
	require.NoError(t, err)

	assert.Equal(t, "Food & Dining", out[0].Category)
	assert.True(t, logger.HasEntry("WARN", "Unusable AI reply, falling back to keyword classifier"))
}

func TestAIClassifierFillsSkippedOperations(t *testing.T) {
	// The reply covers only operation 2; operation 1 and the out-of-range
	// operation 9 go through the keyword fallback.
	client := &ai.MockClient{Responses: []string{
		`[{"operation": 2, "category": "Rent"}, {"operation": 9, "category": "Rent"}]`,
	}}
	classifier, _ := newAIClassifier(client)

	out, err := classifier.Classify(context.Background(), []models.Transaction{
		{Description: "uber trip", Type: models.TypeExpense},
		{Description: "office lease", Type: models.TypeExpense},
	}, testCategories)
	require.NoError(t, err)

	assert.Equal(t, "Transportation", out[0].Category)
	assert.Equal(t, models.MethodKeyword, out[0].CategorizationMethod)
	assert.Equal(t, "Rent", out[1].Category)
	assert.Equal(t, models.MethodAI, out[1].CategorizationMethod)
}

func TestAIClassifierEmptyBatch(t *testing.T) {
	client := &ai.MockClient{}
	classifier, _ := newAIClassifier(client)

	out, err := classifier.Classify(context.Background(), nil, testCategories)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, client.Prompts)
}
