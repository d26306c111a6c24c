package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage your company profile",
	Long:  `The company profile is copied onto every new invoice as the seller.`,
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := appInstance.CompanyRepo.Get(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load company profile: %w", err)
		}

		if c.Name == "" {
			fmt.Println("No company profile set. Use 'invoicedesk company set --name ...'")
			return nil
		}

		for _, kv := range [][2]string{
			{"Name", c.Name},
			{"Address", c.Address},
			{"Phone", c.Phone},
			{"Email", c.Email},
			{"Website", c.Website},
			{"Tax ID", c.TaxID},
			{"Logo", c.Logo},
			{"Signature", c.Signature},
			{"Bank", c.Bank.BankName},
			{"Account name", c.Bank.AccountName},
			{"Account no.", c.Bank.AccountNumber},
			{"IBAN", c.Bank.IBAN},
			{"SWIFT", c.Bank.SwiftCode},
		} {
			if kv[1] != "" {
				fmt.Printf("%-13s %s\n", kv[0]+":", truncate(kv[1], 64))
			}
		}
		return nil
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update company profile fields",
	Long: `Update company profile fields. Only the flags given are changed.
Logo and signature accept a file path, an http(s) URL, or a data: URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		c, err := appInstance.CompanyRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load company profile: %w", err)
		}

		fields := map[string]*string{
			"name":           &c.Name,
			"address":        &c.Address,
			"phone":          &c.Phone,
			"email":          &c.Email,
			"website":        &c.Website,
			"tax-id":         &c.TaxID,
			"logo":           &c.Logo,
			"signature":      &c.Signature,
			"bank-name":      &c.Bank.BankName,
			"account-name":   &c.Bank.AccountName,
			"account-number": &c.Bank.AccountNumber,
			"iban":           &c.Bank.IBAN,
			"swift":          &c.Bank.SwiftCode,
		}

		changed := 0
		for flag, field := range fields {
			if cmd.Flags().Changed(flag) {
				*field, _ = cmd.Flags().GetString(flag)
				changed++
			}
		}
		if changed == 0 {
			return fmt.Errorf("no fields given")
		}

		if err := appInstance.CompanyRepo.Save(ctx, c); err != nil {
			return fmt.Errorf("failed to save company profile: %w", err)
		}

		fmt.Printf("✓ Company profile updated (%d field(s))\n", changed)
		return nil
	},
}

func init() {
	companyCmd.AddCommand(companyShowCmd)
	companyCmd.AddCommand(companySetCmd)

	companySetCmd.Flags().String("name", "", "Company name")
	companySetCmd.Flags().String("address", "", "Address")
	companySetCmd.Flags().String("phone", "", "Phone")
	companySetCmd.Flags().String("email", "", "Email")
	companySetCmd.Flags().String("website", "", "Website")
	companySetCmd.Flags().String("tax-id", "", "Tax registration number")
	companySetCmd.Flags().String("logo", "", "Logo image reference")
	companySetCmd.Flags().String("signature", "", "Signature image reference")
	companySetCmd.Flags().String("bank-name", "", "Bank name")
	companySetCmd.Flags().String("account-name", "", "Account name")
	companySetCmd.Flags().String("account-number", "", "Account number")
	companySetCmd.Flags().String("iban", "", "IBAN")
	companySetCmd.Flags().String("swift", "", "SWIFT code")
}
