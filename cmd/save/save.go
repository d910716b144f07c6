// Package save handles processing a CSV export and persisting the result
package save

import (
	"fmt"

	"bkowalczyk/pnl-csv/cmd/common"
	"bkowalczyk/pnl-csv/cmd/root"
	"bkowalczyk/pnl-csv/internal/procerror"

	"github.com/spf13/cobra"
)

var (
	periodFlag string
	overwrite  bool
)

// Cmd represents the save command
var Cmd = &cobra.Command{
	Use:   "save",
	Short: "Process a bank CSV export and persist the result",
	Long: `Process a bank CSV export like the process command, then persist the
categorized operations for the period. A period that already has data is
rejected unless --overwrite is given, in which case it is replaced in full.`,
	RunE: saveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&periodFlag, "period", "p", "", "Reporting period as YYYY-MM (required)")
	Cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing operations for the period")
	_ = Cmd.MarkFlagRequired("period")
}

func saveFunc(cmd *cobra.Command, args []string) error {
	period, err := common.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}

	result, err := common.RunPipeline(cmd.Context(), root.App, root.SharedFlags.Input, period)
	if err != nil {
		return err
	}

	saved, err := root.App.GetProcessor().SaveResults(result.Operations, period, overwrite)
	if err != nil {
		if procerror.IsPeriodConflict(err) {
			return fmt.Errorf("%w (rerun with --overwrite to replace)", err)
		}
		return err
	}

	if root.SharedFlags.Output != "" {
		if err := common.WriteResult(result, root.SharedFlags.Output, root.Log); err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), common.FormatSummary(result))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d operations for %s\n", saved, period)
	return nil
}
