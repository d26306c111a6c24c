package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the store",
	Long: `Reset data in the store.

Examples:
  invoicedesk reset invoices    # Delete all invoices
  invoicedesk reset expenses    # Delete all expenses
  invoicedesk reset all         # Wipe everything; built-in templates are restored on next start`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL invoices. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := removeKeys(store.KeyInvoices); err != nil {
			return err
		}
		fmt.Println("All invoices have been deleted.")
		return nil
	},
}

var resetExpensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Delete all expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL expenses. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := removeKeys(store.KeyExpenses); err != nil {
			return err
		}
		fmt.Println("All expenses have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: invoices, expenses, customers, products, templates, company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (invoices, expenses, customers, products, templates, company profile). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		err := removeKeys(
			store.KeyInvoices,
			store.KeyExpenses,
			store.KeyCustomers,
			store.KeyProducts,
			store.KeyTemplates,
			store.KeyActiveTemplateID,
			store.KeyCompany,
			store.KeyUser,
		)
		if err != nil {
			return err
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func removeKeys(keys ...string) error {
	ctx := context.Background()
	for _, key := range keys {
		if err := appInstance.Store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetExpensesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
