package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Track business expenses",
	Long:  `Record, filter, and total business expenses.`,
}

// expenseFilter builds a filter from the shared --search/--category/--from/--to flags
func expenseFilter(cmd *cobra.Command) (service.ExpenseFilter, error) {
	var filter service.ExpenseFilter
	var err error

	filter.Search, _ = cmd.Flags().GetString("search")
	filter.Category, _ = cmd.Flags().GetString("category")

	fromStr, _ := cmd.Flags().GetString("from")
	if filter.From, err = optionalDate(fromStr); err != nil {
		return filter, fmt.Errorf("invalid from date: %w", err)
	}
	toStr, _ := cmd.Flags().GetString("to")
	if filter.To, err = optionalDate(toStr); err != nil {
		return filter, fmt.Errorf("invalid to date: %w", err)
	}
	return filter, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Match description or category")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().String("from", "", "Start date (inclusive)")
	cmd.Flags().String("to", "", "End date (inclusive)")
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter, err := expenseFilter(cmd)
		if err != nil {
			return err
		}

		expenses, err := appInstance.ExpenseService.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}

		if len(expenses) == 0 {
			fmt.Println("No expenses found")
			return nil
		}

		fmt.Printf("%-10s %-12s %-22s %-30s %s\n", "ID", "Date", "Category", "Description", "Amount")
		fmt.Println("-----------------------------------------------------------------------------------------")

		var total float64
		for _, e := range expenses {
			fmt.Printf("%-10s %-12s %-22s %-30s $%.2f\n",
				truncate(e.ID, 10),
				e.Date.Format("2006-01-02"),
				truncate(e.Category, 22),
				truncate(e.Description, 30),
				e.Amount,
			)
			total += e.Amount
		}

		fmt.Printf("\nTotal: %d expense(s), $%.2f\n", len(expenses), total)
		return nil
	},
}

var expensesAddCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Record a new expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		in := service.ExpenseInput{Description: args[0]}
		in.Amount, _ = cmd.Flags().GetFloat64("amount")
		in.Category, _ = cmd.Flags().GetString("category")
		in.Notes, _ = cmd.Flags().GetString("notes")
		in.PaymentMethod, _ = cmd.Flags().GetString("method")
		in.Receipt, _ = cmd.Flags().GetString("receipt")

		dateStr, _ := cmd.Flags().GetString("date")
		date, err := parseDate(dateStr)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		in.Date = date

		expense, err := appInstance.ExpenseService.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to record expense: %w", err)
		}

		fmt.Printf("✓ Expense recorded: %s\n", expense.Description)
		fmt.Printf("  ID: %s\n", expense.ID)
		fmt.Printf("  Amount: $%.2f (%s)\n", expense.Amount, expense.Category)
		if !domain.IsPredefinedCategory(expense.Category) {
			fmt.Printf("  Note: %q is not a predefined category\n", expense.Category)
		}
		return nil
	},
}

var expensesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		existing, err := appInstance.ExpenseService.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}

		in := service.ExpenseInput{
			Date:          existing.Date,
			Amount:        existing.Amount,
			Category:      existing.Category,
			Description:   existing.Description,
			Notes:         existing.Notes,
			PaymentMethod: existing.PaymentMethod,
			Receipt:       existing.Receipt,
		}

		flags := cmd.Flags()
		if flags.Changed("description") {
			in.Description, _ = flags.GetString("description")
		}
		if flags.Changed("amount") {
			in.Amount, _ = flags.GetFloat64("amount")
		}
		if flags.Changed("category") {
			in.Category, _ = flags.GetString("category")
		}
		if flags.Changed("notes") {
			in.Notes, _ = flags.GetString("notes")
		}
		if flags.Changed("method") {
			in.PaymentMethod, _ = flags.GetString("method")
		}
		if flags.Changed("receipt") {
			in.Receipt, _ = flags.GetString("receipt")
		}
		if flags.Changed("date") {
			dateStr, _ := flags.GetString("date")
			if in.Date, err = parseDate(dateStr); err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
		}

		if _, err := appInstance.ExpenseService.Update(ctx, existing.ID, in); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}

		fmt.Printf("✓ Expense %s updated\n", existing.ID)
		return nil
	},
}

var expensesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		expense, err := appInstance.ExpenseService.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get expense: %w", err)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete expense %q ($%.2f)?", expense.Description, expense.Amount)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ExpenseService.Delete(ctx, expense.ID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}

		fmt.Printf("✓ Expense %s deleted\n", expense.ID)
		return nil
	},
}

var expensesTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Sum expenses matching the filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := expenseFilter(cmd)
		if err != nil {
			return err
		}

		total, err := appInstance.ExpenseService.Total(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("failed to total expenses: %w", err)
		}

		fmt.Printf("Total expenses: $%.2f\n", total)
		return nil
	},
}

var expensesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List expense categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		used, err := appInstance.ExpenseService.Categories(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		fmt.Println("Predefined:")
		for _, c := range domain.ExpenseCategories {
			fmt.Printf("  %s\n", c)
		}

		var custom []string
		for _, c := range used {
			if !domain.IsPredefinedCategory(c) {
				custom = append(custom, c)
			}
		}
		if len(custom) > 0 {
			fmt.Println("\nIn use:")
			for _, c := range custom {
				fmt.Printf("  %s\n", c)
			}
		}
		return nil
	},
}

func init() {
	expensesCmd.AddCommand(expensesListCmd)
	expensesCmd.AddCommand(expensesAddCmd)
	expensesCmd.AddCommand(expensesEditCmd)
	expensesCmd.AddCommand(expensesDeleteCmd)
	expensesCmd.AddCommand(expensesTotalCmd)
	expensesCmd.AddCommand(expensesCategoriesCmd)

	addFilterFlags(expensesListCmd)
	addFilterFlags(expensesTotalCmd)

	expensesAddCmd.Flags().Float64("amount", 0, "Amount (required)")
	expensesAddCmd.Flags().String("category", "Miscellaneous", "Category")
	expensesAddCmd.Flags().String("date", "today", "Expense date")
	expensesAddCmd.Flags().String("notes", "", "Notes")
	expensesAddCmd.Flags().String("method", "", "Payment method")
	expensesAddCmd.Flags().String("receipt", "", "Receipt reference")
	expensesAddCmd.MarkFlagRequired("amount")

	expensesEditCmd.Flags().String("description", "", "Description")
	expensesEditCmd.Flags().Float64("amount", 0, "Amount")
	expensesEditCmd.Flags().String("category", "", "Category")
	expensesEditCmd.Flags().String("date", "", "Expense date")
	expensesEditCmd.Flags().String("notes", "", "Notes")
	expensesEditCmd.Flags().String("method", "", "Payment method")
	expensesEditCmd.Flags().String("receipt", "", "Receipt reference")

	expensesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
