// Package rates handles the exchange rate lookup command
package rates

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bkowalczyk/pnl-csv/cmd/root"
	"bkowalczyk/pnl-csv/internal/dateutils"

	"github.com/spf13/cobra"
)

var (
	currencies string
	dateFlag   string
)

// Cmd represents the rates command
var Cmd = &cobra.Command{
	Use:   "rates",
	Short: "Look up exchange rates for the reporting currency",
	Long: `Look up exchange rates from the configured source, with the same cache
and fallback behavior the processing pipeline uses. Historical dates degrade
to latest rates when the source does not serve them.`,
	RunE: ratesFunc,
}

func init() {
	Cmd.Flags().StringVarP(&currencies, "currencies", "c", "", "Comma-separated currency codes (required)")
	Cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Rate date as YYYY-MM-DD (default latest)")
	_ = Cmd.MarkFlagRequired("currencies")
}

func ratesFunc(cmd *cobra.Command, args []string) error {
	codes := strings.Split(currencies, ",")

	var asOf time.Time
	if dateFlag != "" {
		parsed, err := dateutils.ParseDate(dateFlag)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateFlag, err)
		}
		asOf = parsed
	}

	rateSet := root.App.GetRates().GetRates(cmd.Context(), codes, asOf)
	if len(rateSet) == 0 {
		return fmt.Errorf("no rates resolved for %q", currencies)
	}

	reporting := root.App.GetConfig().Currency.Reporting
	sorted := make([]string, 0, len(rateSet))
	for code := range rateSet {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	for _, code := range sorted {
		fmt.Fprintf(cmd.OutOrStdout(), "1 %s = %s %s\n", code, rateSet[code].String(), reporting)
	}
	return nil
}
