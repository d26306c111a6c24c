package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "Invoices, expenses, and PDF export from the terminal",
	Long: `Invoicedesk helps small businesses write invoices, track expenses, and
export invoices as paginated PDFs styled by customizable templates.

By default, running invoicedesk without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: launch TUI
		launchTUI(cmd, args)
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
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(expensesCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
