// Package normalizer converts transaction amounts into the reporting
// currency using rates from the exchange rate provider.
package normalizer

import (
	"context"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/procerror"

	"github.com/shopspring/decimal"
)

// RateSource supplies exchange rates relative to the reporting currency.
// *rates.Provider satisfies this; tests substitute deterministic fakes.
type RateSource interface {
	GetRates(ctx context.Context, currencies []string, asOf time.Time) map[string]decimal.Decimal
}

// Normalizer converts transaction amounts to the reporting currency.
type Normalizer struct {
	rates     RateSource
	reporting string
	logger    logging.Logger
}

// Result carries the normalized batch and the conversion metadata used.
type Result struct {
	Operations      []models.Transaction
	Rates           map[string]decimal.Decimal
	CurrenciesFound []string
}

// New creates a Normalizer.
func New(rateSource RateSource, reportingCurrency string, logger logging.Logger) *Normalizer {
	return &Normalizer{
		rates:     rateSource,
		reporting: reportingCurrency,
		logger:    logger,
	}
}

// Normalize converts every operation's amount to a non-negative value in the
// reporting currency. Rates for the whole batch are requested once. When the
// batch only contains reporting-currency operations, no external call is
// made. An empty currency set is an input error, not a silent default.
func (n *Normalizer) Normalize(ctx context.Context, operations []models.Transaction) (Result, error) {
	currencies := distinctCurrencies(operations)
	if len(currencies) == 0 {
		return Result{}, &procerror.InputError{
			Code:   procerror.CodeNoCurrencies,
			Reason: "no currencies found in operations",
		}
	}

	var rateSet map[string]decimal.Decimal
	if len(currencies) == 1 && currencies[0] == n.reporting {
		rateSet = map[string]decimal.Decimal{n.reporting: decimal.NewFromInt(1)}
	} else {
		rateSet = n.rates.GetRates(ctx, currencies, time.Time{})
	}

	n.logger.WithField("currencies", currencies).Info("Converting operations to reporting currency")

	converted := make([]models.Transaction, len(operations))
	for i, op := range operations {
		converted[i] = n.convert(op, rateSet)
	}

	return Result{
		Operations:      converted,
		Rates:           rateSet,
		CurrenciesFound: currencies,
	}, nil
}

// convert applies the rate for one operation. The converted amount is always
// non-negative; the original sign survives on Amount.
func (n *Normalizer) convert(op models.Transaction, rateSet map[string]decimal.Decimal) models.Transaction {
	if op.Currency == n.reporting {
		op.ConvertedAmount = op.Amount.Abs()
		op.ExchangeRate = decimal.NewFromInt(1)
		op.IsConverted = false
		return op
	}

	rate, ok := rateSet[op.Currency]
	if !ok {
		rate = decimal.NewFromInt(1)
	}

	op.ConvertedAmount = op.Amount.Abs().Mul(rate)
	op.ExchangeRate = rate
	op.IsConverted = true
	return op
}

// distinctCurrencies lists the currency codes present in the batch, sorted by
// first appearance.
func distinctCurrencies(operations []models.Transaction) []string {
	seen := make(map[string]struct{})
	var currencies []string
	for _, op := range operations {
		if op.Currency == "" {
			continue
		}
		if _, ok := seen[op.Currency]; ok {
			continue
		}
		seen[op.Currency] = struct{}{}
		currencies = append(currencies, op.Currency)
	}
	return currencies
}
