package cli

import (
	"github.com/spf13/cobra"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "blackroad-invoice",
	Short: "Invoice tracking for a small business",
	Long: `BlackRoad Invoice Manager tracks invoices with line items, tax and
discounts, advances them through their lifecycle (draft, sent, overdue, paid),
computes overdue fees, and produces text invoices, CSV exports, and reports.

By default, running blackroad-invoice without arguments launches the
interactive TUI. Use subcommands for CLI operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(markOverdueCmd)
	rootCmd.AddCommand(overdueFeeCmd)
	rootCmd.AddCommand(pdfCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
