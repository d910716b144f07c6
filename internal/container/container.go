// Package container provides dependency injection for the pnl-csv
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"bkowalczyk/pnl-csv/internal/ai"
	"bkowalczyk/pnl-csv/internal/categorizer"
	"bkowalczyk/pnl-csv/internal/colmap"
	"bkowalczyk/pnl-csv/internal/config"
	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/normalizer"
	"bkowalczyk/pnl-csv/internal/pipeline"
	"bkowalczyk/pnl-csv/internal/rates"
	"bkowalczyk/pnl-csv/internal/ruleengine"
	"bkowalczyk/pnl-csv/internal/store"

	"github.com/shopspring/decimal"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation; all fields are private and
// only reachable through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	recordStore store.RecordStore
	aiClient    *ai.GeminiClient
	rates       *rates.Provider
	engine      *ruleengine.Engine
	processor   *pipeline.Processor
}

// NewContainer creates and wires all application dependencies. The AI client
// is optional; when disabled, the column mapper uses heuristics and the
// classifier runs on keywords only.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	recordStore := store.NewYAMLStore(
		cfg.Store.RulesFile,
		cfg.Store.CategoriesFile,
		cfg.Store.TransactionsDir,
		logger,
	)

	var geminiClient *ai.GeminiClient
	var oracle ai.Client
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := ai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.TimeoutSeconds, logger)
		if err != nil {
			return nil, fmt.Errorf("creating AI client: %w", err)
		}
		geminiClient = client
		oracle = client
		logger.Info("AI assistance enabled")
	} else {
		logger.Info("AI assistance disabled")
	}

	rateProvider := rates.NewProvider(rates.Options{
		BaseURL:           cfg.Currency.RateURL,
		ReportingCurrency: cfg.Currency.Reporting,
		Timeout:           time.Duration(cfg.Currency.TimeoutSeconds) * time.Second,
		CacheTTL:          time.Duration(cfg.Currency.CacheTTLMinutes) * time.Minute,
		FallbackRates:     decimalRates(cfg.Currency.FallbackRates),
	}, logger)

	engine := ruleengine.NewEngine(
		recordStore,
		time.Duration(cfg.Rules.CacheTTLMinutes)*time.Minute,
		logger,
	)

	keyword := categorizer.NewKeywordClassifier(logger)
	var classifier categorizer.Classifier = keyword
	if oracle != nil {
		classifier = categorizer.NewAIClassifier(oracle, keyword, logger)
	}

	processor := pipeline.NewProcessor(
		colmap.NewAnalyzer(oracle, logger),
		normalizer.New(rateProvider, cfg.Currency.Reporting, logger),
		engine,
		classifier,
		recordStore,
		cfg.Currency.Reporting,
		logger,
	)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "ai_enabled", Value: oracle != nil},
		logging.Field{Key: "reporting_currency", Value: cfg.Currency.Reporting})

	return &Container{
		logger:      logger,
		config:      cfg,
		recordStore: recordStore,
		aiClient:    geminiClient,
		rates:       rateProvider,
		engine:      engine,
		processor:   processor,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the container's record store instance.
func (c *Container) GetStore() store.RecordStore {
	return c.recordStore
}

// GetRates returns the container's exchange rate provider.
func (c *Container) GetRates() *rates.Provider {
	return c.rates
}

// GetRuleEngine returns the container's rule engine instance.
func (c *Container) GetRuleEngine() *ruleengine.Engine {
	return c.engine
}

// GetProcessor returns the container's pipeline processor.
func (c *Container) GetProcessor() *pipeline.Processor {
	return c.processor
}

// Close releases container resources, currently the AI client connection.
func (c *Container) Close() error {
	if c.aiClient != nil {
		if err := c.aiClient.Close(); err != nil {
			return fmt.Errorf("closing AI client: %w", err)
		}
	}
	c.logger.Info("Container closed")
	return nil
}

func decimalRates(rates map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		out[code] = decimal.NewFromFloat(rate)
	}
	return out
}
