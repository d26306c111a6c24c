package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage saved customers",
	Long:  `Customers are saved automatically when an invoice is created for a new client.`,
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		customers, err := appInstance.CustomerRepo.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}

		if len(customers) == 0 {
			fmt.Println("No customers found")
			return nil
		}

		fmt.Printf("%-36s %-25s %-30s %s\n", "ID", "Name", "Email", "Phone")
		fmt.Println("-------------------------------------------------------------------------------------------------------")
		for _, c := range customers {
			fmt.Printf("%-36s %-25s %-30s %s\n",
				c.ID,
				truncate(c.Name, 25),
				truncate(c.Email, 30),
				c.Phone,
			)
		}

		fmt.Printf("\nTotal: %d customer(s)\n", len(customers))
		return nil
	},
}

var customersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &domain.Customer{
			ID:        uuid.NewString(),
			Name:      args[0],
			CreatedAt: time.Now(),
		}
		c.Address, _ = cmd.Flags().GetString("address")
		c.Email, _ = cmd.Flags().GetString("email")
		c.Phone, _ = cmd.Flags().GetString("phone")
		c.TRN, _ = cmd.Flags().GetString("trn")

		if err := appInstance.CustomerRepo.Create(context.Background(), c); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		fmt.Printf("✓ Customer created: %s\n", c.Name)
		fmt.Printf("  ID: %s\n", c.ID)
		return nil
	},
}

var customersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a customer (existing invoices keep their copy)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.CustomerRepo.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		fmt.Printf("✓ Customer %s deleted\n", args[0])
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage saved products",
	Long:  `Products are saved automatically when an invoice uses a new item.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := appInstance.ProductRepo.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		if len(products) == 0 {
			fmt.Println("No products found")
			return nil
		}

		fmt.Printf("%-36s %-30s %-10s %s\n", "ID", "Name", "Price", "Unit")
		fmt.Println("-----------------------------------------------------------------------------------------")
		for _, p := range products {
			fmt.Printf("%-36s %-30s $%-9.2f %s\n",
				p.ID,
				truncate(p.Name, 30),
				p.Price,
				p.Unit,
			)
		}

		fmt.Printf("\nTotal: %d product(s)\n", len(products))
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &domain.Product{
			ID:        uuid.NewString(),
			Name:      args[0],
			CreatedAt: time.Now(),
		}
		p.Price, _ = cmd.Flags().GetFloat64("price")
		p.Unit, _ = cmd.Flags().GetString("unit")

		if err := appInstance.ProductRepo.Create(context.Background(), p); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		fmt.Printf("✓ Product created: %s ($%.2f)\n", p.Name, p.Price)
		fmt.Printf("  ID: %s\n", p.ID)
		return nil
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.ProductRepo.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		fmt.Printf("✓ Product %s deleted\n", args[0])
		return nil
	},
}

func init() {
	customersCmd.AddCommand(customersListCmd)
	customersCmd.AddCommand(customersAddCmd)
	customersCmd.AddCommand(customersDeleteCmd)

	customersAddCmd.Flags().String("address", "", "Customer address")
	customersAddCmd.Flags().String("email", "", "Customer email")
	customersAddCmd.Flags().String("phone", "", "Customer phone")
	customersAddCmd.Flags().String("trn", "", "Tax registration number")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsDeleteCmd)

	productsAddCmd.Flags().Float64("price", 0, "Unit price")
	productsAddCmd.Flags().String("unit", "", "Unit (e.g. hour, piece)")
}
