// Package process handles the CSV processing command
package process

import (
	"fmt"

	"bkowalczyk/pnl-csv/cmd/common"
	"bkowalczyk/pnl-csv/cmd/root"

	"github.com/spf13/cobra"
)

var periodFlag string

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Process a bank CSV export",
	Long: `Process a bank CSV export: infer the column layout, convert amounts to
the reporting currency and categorize every operation. Results are written
as CSV without being persisted; use the save command to persist.`,
	RunE: processFunc,
}

func init() {
	Cmd.Flags().StringVarP(&periodFlag, "period", "p", "", "Reporting period as YYYY-MM (required)")
	_ = Cmd.MarkFlagRequired("period")
}

func processFunc(cmd *cobra.Command, args []string) error {
	period, err := common.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}

	result, err := common.RunPipeline(cmd.Context(), root.App, root.SharedFlags.Input, period)
	if err != nil {
		return err
	}

	if err := common.WriteResult(result, root.SharedFlags.Output, root.Log); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), common.FormatSummary(result))
	return nil
}
