package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a summary of invoices and expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		recent, _ := cmd.Flags().GetInt("recent")
		d, err := appInstance.ReportService.GetDashboard(ctx, recent)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("Summary")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Invoices:            %d (%d paid, %d unpaid)\n", d.TotalInvoices, d.PaidCount, d.UnpaidCount)
		fmt.Printf("Revenue (paid):      $%.2f\n", d.Revenue)
		fmt.Printf("Outstanding:         $%.2f\n", d.Outstanding)
		fmt.Printf("Expenses:            $%.2f\n", d.ExpensesTotal)
		fmt.Printf("Expenses this month: $%.2f\n", d.ExpensesThisMonth)
		fmt.Printf("Net:                 $%.2f\n", d.Net)

		if len(d.Recent) > 0 {
			fmt.Println("\nRecent invoices:")
			fmt.Println(strings.Repeat("-", 60))
			for _, inv := range d.Recent {
				fmt.Printf("%-15s %-25s $%10.2f  %s\n",
					truncate(inv.Number, 15),
					truncate(inv.Client.Name, 25),
					inv.Total,
					inv.Status,
				)
			}
		}

		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = time.Now().Year()
		}
		revenue, err := appInstance.ReportService.GetRevenueByMonth(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to compute revenue: %w", err)
		}

		fmt.Printf("\nRevenue by month (%d):\n", year)
		fmt.Println(strings.Repeat("-", 60))
		for m := time.January; m <= time.December; m++ {
			if revenue[m] > 0 {
				fmt.Printf("  %-10s $%10.2f\n", m, revenue[m])
			}
		}

		filter, err := expenseFilter(cmd)
		if err != nil {
			return err
		}
		byCategory, err := appInstance.ReportService.GetExpensesByCategory(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to group expenses: %w", err)
		}

		if len(byCategory) > 0 {
			categories := make([]string, 0, len(byCategory))
			for c := range byCategory {
				categories = append(categories, c)
			}
			sort.Slice(categories, func(i, j int) bool {
				return byCategory[categories[i]] > byCategory[categories[j]]
			})

			fmt.Println("\nExpenses by category:")
			fmt.Println(strings.Repeat("-", 60))
			for _, c := range categories {
				fmt.Printf("  %-25s $%10.2f\n", truncate(c, 25), byCategory[c])
			}
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().Int("recent", 5, "Number of recent invoices to show")
	reportCmd.Flags().Int("year", 0, "Year for the monthly revenue breakdown (defaults to this year)")
	addFilterFlags(reportCmd)
}
