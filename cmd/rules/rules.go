// Package rules handles categorization rule management commands
package rules

import (
	"fmt"
	"text/tabwriter"

	"bkowalczyk/pnl-csv/cmd/root"
	"bkowalczyk/pnl-csv/internal/models"
	"bkowalczyk/pnl-csv/internal/store"

	"github.com/spf13/cobra"
)

var (
	pattern      string
	categoryID   string
	categoryName string
	description  string
	priority     int
	active       bool
)

// Cmd represents the rules command group
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage categorization rules",
	Long: `Manage the categorization rules applied before the classifier. Rules are
matched against operation descriptions; the strongest match wins, ties go
to the most used rule.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all rules ordered by usage",
	RunE:  listFunc,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new rule",
	RunE:  createFunc,
}

var updateCmd = &cobra.Command{
	Use:   "update <rule-id>",
	Short: "Update fields of an existing rule",
	Args:  cobra.ExactArgs(1),
	RunE:  updateFunc,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteFunc,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rule usage statistics",
	RunE:  statsFunc,
}

func init() {
	createCmd.Flags().StringVar(&pattern, "pattern", "", "Description pattern to match (required)")
	createCmd.Flags().StringVar(&categoryID, "category-id", "", "Category ID to assign (required)")
	createCmd.Flags().StringVar(&categoryName, "category", "", "Category name to assign (required)")
	createCmd.Flags().StringVar(&description, "description", "", "Note explaining the rule")
	createCmd.Flags().IntVar(&priority, "priority", 5, "Rule priority")
	_ = createCmd.MarkFlagRequired("pattern")
	_ = createCmd.MarkFlagRequired("category-id")
	_ = createCmd.MarkFlagRequired("category")

	updateCmd.Flags().StringVar(&pattern, "pattern", "", "New description pattern")
	updateCmd.Flags().StringVar(&categoryID, "category-id", "", "New category ID")
	updateCmd.Flags().StringVar(&description, "description", "", "New rule note")
	updateCmd.Flags().IntVar(&priority, "priority", 0, "New rule priority")
	updateCmd.Flags().BoolVar(&active, "active", true, "Whether the rule is applied")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(statsCmd)
}

func recordStore() store.RecordStore {
	return root.App.GetStore()
}

func listFunc(cmd *cobra.Command, args []string) error {
	rules, err := recordStore().GetAllRules()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	if len(rules) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rules defined")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATTERN\tCATEGORY\tUSAGE\tACTIVE")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", r.ID, r.Pattern, r.CategoryName, r.UsageCount, r.IsActive)
	}
	return w.Flush()
}

func createFunc(cmd *cobra.Command, args []string) error {
	rule, err := recordStore().CreateRule(pattern, categoryID, categoryName, description, priority)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}
	root.App.GetRuleEngine().InvalidateCache()

	fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s: %q -> %s\n", rule.ID, rule.Pattern, rule.CategoryName)
	return nil
}

func updateFunc(cmd *cobra.Command, args []string) error {
	var patch models.RulePatch
	if cmd.Flags().Changed("pattern") {
		patch.Pattern = &pattern
	}
	if cmd.Flags().Changed("category-id") {
		patch.CategoryID = &categoryID
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &description
	}
	if cmd.Flags().Changed("priority") {
		patch.Priority = &priority
	}
	if cmd.Flags().Changed("active") {
		patch.IsActive = &active
	}

	rule, err := recordStore().UpdateRule(args[0], patch)
	if err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}
	root.App.GetRuleEngine().InvalidateCache()

	fmt.Fprintf(cmd.OutOrStdout(), "Updated rule %s: %q -> %s\n", rule.ID, rule.Pattern, rule.CategoryName)
	return nil
}

func deleteFunc(cmd *cobra.Command, args []string) error {
	if err := recordStore().DeleteRule(args[0]); err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	root.App.GetRuleEngine().InvalidateCache()

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
	return nil
}

func statsFunc(cmd *cobra.Command, args []string) error {
	stats, err := recordStore().RuleStats()
	if err != nil {
		return fmt.Errorf("loading rule statistics: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total rules: %d\n", stats.TotalRules)
	fmt.Fprintf(out, "Total usage: %d\n", stats.TotalUsage)
	fmt.Fprintf(out, "Average usage: %.2f\n", stats.AverageUsage)
	if len(stats.MostUsed) > 0 {
		fmt.Fprintln(out, "Most used:")
		for _, r := range stats.MostUsed {
			fmt.Fprintf(out, "  %q -> %s (%d)\n", r.Pattern, r.CategoryName, r.UsageCount)
		}
	}
	return nil
}
