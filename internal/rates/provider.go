// Package rates fetches and caches currency exchange rates relative to the
// reporting currency, falling back to a static rate table when the external
// source is unavailable.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"

	"github.com/shopspring/decimal"
)

// rateSanityCeiling is the upper bound above which a rate is considered
// suspicious. Out-of-range rates are logged but still used; see the
// validation notes in DESIGN.md.
var rateSanityCeiling = decimal.NewFromInt(1000)

// Options configures a Provider.
type Options struct {
	// BaseURL is the "latest rates" endpoint; the reporting currency code
	// is appended as the path segment.
	BaseURL           string
	ReportingCurrency string
	Timeout           time.Duration
	CacheTTL          time.Duration
	FallbackRates     map[string]decimal.Decimal

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Provider retrieves exchange rates with a TTL cache and static fallback.
// It is safe for concurrent use by multiple batches; cache entries are
// idempotent snapshots keyed by content, so last-writer-wins is acceptable.
type Provider struct {
	baseURL    string
	reporting  string
	httpClient *http.Client
	cacheTTL   time.Duration
	fallback   map[string]decimal.Decimal
	logger     logging.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry

	// now is swappable in tests to drive cache expiry.
	now func() time.Time
}

type cacheEntry struct {
	rates    map[string]decimal.Decimal
	storedAt time.Time
}

// rateResponse mirrors the JSON body of the external rate source.
type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// NewProvider creates a rate provider.
func NewProvider(opts Options, logger logging.Logger) *Provider {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	fallback := make(map[string]decimal.Decimal, len(opts.FallbackRates))
	for code, rate := range opts.FallbackRates {
		fallback[strings.ToUpper(code)] = rate
	}

	return &Provider{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		reporting:  strings.ToUpper(opts.ReportingCurrency),
		httpClient: httpClient,
		cacheTTL:   opts.CacheTTL,
		fallback:   fallback,
		logger:     logger,
		cache:      make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// GetRates returns one rate per requested currency, expressed as reporting-
// currency units per unit of source currency. The external source is called
// at most once per cache miss, for all currencies simultaneously. Network or
// decoding failures are recovered via the static fallback table and never
// propagate to the caller.
//
// A non-zero asOf requests historical rates; the external source only serves
// latest rates, so historical requests degrade to a latest lookup. This is a
// documented limitation, not silently correct data.
func (p *Provider) GetRates(ctx context.Context, currencies []string, asOf time.Time) map[string]decimal.Decimal {
	normalized := normalizeCodes(currencies)
	if len(normalized) == 0 {
		return map[string]decimal.Decimal{}
	}

	key := cacheKey(normalized, asOf)

	if rates, ok := p.cachedRates(key); ok {
		p.logger.WithField("currencies", strings.Join(normalized, ",")).Debug("Using cached exchange rates")
		return rates
	}

	if !asOf.IsZero() && asOf.Format("2006-01-02") != p.now().Format("2006-01-02") {
		p.logger.WithField("date", asOf.Format("2006-01-02")).Warn("Historical rates not supported, using latest rates")
	}

	rates, err := p.fetchLatest(ctx, normalized)
	if err != nil {
		p.logger.WithError(err).Warn("Exchange rate source failed, using fallback rates")
		return p.fallbackRates(normalized)
	}

	p.validateRates(rates)

	p.mu.Lock()
	p.cache[key] = cacheEntry{rates: rates, storedAt: p.now()}
	p.mu.Unlock()

	return rates
}

// ClearCache drops all cached rate sets.
func (p *Provider) ClearCache() {
	p.mu.Lock()
	p.cache = make(map[string]cacheEntry)
	p.mu.Unlock()
}

func (p *Provider) cachedRates(key string) (map[string]decimal.Decimal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.cache[key]
	if !ok || p.now().Sub(entry.storedAt) >= p.cacheTTL {
		return nil, false
	}
	return entry.rates, true
}

// fetchLatest calls the external rate source once for all requested currencies.
func (p *Provider) fetchLatest(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, p.reporting)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pnl-csv/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close rate response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source responded with status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rate response: %w", err)
	}
	if body.Rates == nil {
		return nil, fmt.Errorf("invalid rate response: missing rates")
	}

	rates := make(map[string]decimal.Decimal, len(currencies))
	for _, code := range currencies {
		switch {
		case code == p.reporting:
			rates[code] = decimal.NewFromInt(1)
		default:
			if raw, ok := body.Rates[code]; ok {
				rates[code] = decimal.NewFromFloat(raw)
			} else if fb, ok := p.fallback[code]; ok {
				rates[code] = fb
			} else {
				rates[code] = decimal.NewFromInt(1)
			}
		}
	}

	return rates, nil
}

// fallbackRates builds a rate set from the static fallback table. Unknown
// currencies default to 1.0.
func (p *Provider) fallbackRates(currencies []string) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal, len(currencies))
	for _, code := range currencies {
		if code == p.reporting {
			rates[code] = decimal.NewFromInt(1)
			continue
		}
		if fb, ok := p.fallback[code]; ok {
			rates[code] = fb
		} else {
			rates[code] = decimal.NewFromInt(1)
		}
	}
	return rates
}

// validateRates logs rates outside the sanity range. They are still used;
// rejecting them would turn a bad upstream quote into a hard failure for the
// whole batch.
func (p *Provider) validateRates(rates map[string]decimal.Decimal) {
	for code, rate := range rates {
		if !rate.IsPositive() || rate.GreaterThan(rateSanityCeiling) {
			p.logger.WithFields(
				logging.Field{Key: "currency", Value: code},
				logging.Field{Key: "rate", Value: rate.String()},
			).Warn("Suspicious exchange rate")
		}
	}
}

func normalizeCodes(currencies []string) []string {
	seen := make(map[string]struct{}, len(currencies))
	normalized := make([]string, 0, len(currencies))
	for _, code := range currencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	sort.Strings(normalized)
	return normalized
}

// cacheKey is order-independent over the currency set.
func cacheKey(sortedCodes []string, asOf time.Time) string {
	date := "latest"
	if !asOf.IsZero() {
		date = asOf.Format("2006-01-02")
	}
	return fmt.Sprintf("rates_%s_%s", date, strings.Join(sortedCodes, "_"))
}
