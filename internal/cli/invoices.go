package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/export"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/service"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `Create, list, edit, and export invoices.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var filter service.InvoiceFilter
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			s, err := domain.ParseInvoiceStatus(statusStr)
			if err != nil {
				return err
			}
			filter.Status = &s
		}
		filter.Client, _ = cmd.Flags().GetString("client")

		invoices, err := appInstance.InvoiceService.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-15s %-25s %-12s %-12s %-12s %-8s\n", "Number", "Client", "Date", "Due", "Total", "Status")
		fmt.Println("---------------------------------------------------------------------------------------")

		for _, inv := range invoices {
			fmt.Printf("%-15s %-25s %-12s %-12s $%-11.2f %-8s\n",
				truncate(inv.Number, 15),
				truncate(inv.Client.Name, 25),
				inv.IssueDate.Format("2006-01-02"),
				formatDue(inv.DueDate),
				inv.Total,
				inv.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new draft invoice",
	Long: `Create a new draft invoice for a saved customer or an ad-hoc client.

Items are given as "description;quantity;price[;unit]" and may be repeated.
A client that does not match a saved customer is saved automatically, as are
items that do not match a saved product.

Examples:
  invoicedesk invoices create --customer 3f2a... --item "Logo design;1;450"
  invoicedesk invoices create --client-name "Acme" --item "Consulting;6;120;hour" --due 2024-02-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		in := service.CreateInvoiceInput{}
		in.Number, _ = cmd.Flags().GetString("number")
		in.CustomerID, _ = cmd.Flags().GetString("customer")
		in.Notes, _ = cmd.Flags().GetString("notes")
		in.Client.Name, _ = cmd.Flags().GetString("client-name")
		in.Client.Address, _ = cmd.Flags().GetString("client-address")
		in.Client.Email, _ = cmd.Flags().GetString("client-email")
		in.Client.Phone, _ = cmd.Flags().GetString("client-phone")
		in.Client.TRN, _ = cmd.Flags().GetString("client-trn")

		if in.CustomerID == "" && in.Client.Name == "" {
			return fmt.Errorf("either --customer or --client-name is required")
		}

		dateStr, _ := cmd.Flags().GetString("date")
		date, err := parseDate(dateStr)
		if err != nil {
			return fmt.Errorf("invalid invoice date: %w", err)
		}
		in.IssueDate = date

		dueStr, _ := cmd.Flags().GetString("due")
		if in.DueDate, err = optionalDate(dueStr); err != nil {
			return fmt.Errorf("invalid due date: %w", err)
		}

		itemSpecs, _ := cmd.Flags().GetStringArray("item")
		for _, raw := range itemSpecs {
			item, err := parseItem(raw)
			if err != nil {
				return err
			}
			in.Items = append(in.Items, item)
		}

		inv, err := appInstance.InvoiceService.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Draft invoice created: %s\n", inv.Number)
		fmt.Printf("  Client: %s\n", inv.Client.Name)
		fmt.Printf("  Due: %s\n", formatDue(inv.DueDate))
		printTotals(inv.Totals)
		return nil
	},
}

var invoicesEditCmd = &cobra.Command{
	Use:   "edit [invoice]",
	Short: "Edit an invoice's number, client or dates",
	Long: `Edit the header of an existing invoice. Only the flags given are changed;
client fields are merged into the invoice's current client.

Examples:
  invoicedesk invoices edit INV-000012 --due 2024-03-15
  invoicedesk invoices edit INV-000012 --client-address "12 High St" --number INV-2024-012
  invoicedesk invoices edit INV-000012 --customer 3f2a...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		client := inv.Client
		if customerID, _ := cmd.Flags().GetString("customer"); customerID != "" {
			c, err := appInstance.CustomerRepo.GetByID(ctx, customerID)
			if err != nil {
				return fmt.Errorf("customer %q: %w", customerID, err)
			}
			client = c.AsParty()
		}

		update, err := invoiceUpdateFromFlags(cmd, inv.Client, client)
		if err != nil {
			return err
		}

		inv, err = appInstance.InvoiceService.Update(ctx, inv.ID, update)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s updated\n", inv.Number)
		fmt.Printf("  Client: %s\n", inv.Client.Name)
		fmt.Printf("  Date: %s  Due: %s\n", inv.IssueDate.Format("2006-01-02"), formatDue(inv.DueDate))
		return nil
	},
}

// invoiceUpdateFromFlags collects the changed edit flags. base is the client
// the client-* flags are merged into; current is the invoice's client today.
func invoiceUpdateFromFlags(cmd *cobra.Command, current, base domain.Party) (service.InvoiceUpdate, error) {
	var update service.InvoiceUpdate
	flags := cmd.Flags()

	if flags.Changed("number") {
		number, _ := flags.GetString("number")
		update.Number = &number
	}

	client := base
	for flag, field := range map[string]*string{
		"client-name":    &client.Name,
		"client-address": &client.Address,
		"client-email":   &client.Email,
		"client-phone":   &client.Phone,
		"client-trn":     &client.TRN,
	} {
		if flags.Changed(flag) {
			*field, _ = flags.GetString(flag)
		}
	}
	if client != current {
		update.Client = &client
	}

	if flags.Changed("date") {
		dateStr, _ := flags.GetString("date")
		date, err := parseDate(dateStr)
		if err != nil {
			return update, fmt.Errorf("invalid invoice date: %w", err)
		}
		update.IssueDate = &date
	}

	noDue, _ := flags.GetBool("no-due")
	if noDue && flags.Changed("due") {
		return update, fmt.Errorf("--due and --no-due cannot be used together")
	}
	update.ClearDueDate = noDue
	if flags.Changed("due") {
		dueStr, _ := flags.GetString("due")
		due, err := parseDate(dueStr)
		if err != nil {
			return update, fmt.Errorf("invalid due date: %w", err)
		}
		update.DueDate = &due
	}
	return update, nil
}

func addInvoiceEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("customer", "", "Replace the client with a saved customer")
	cmd.Flags().String("client-name", "", "Client name")
	cmd.Flags().String("client-address", "", "Client address")
	cmd.Flags().String("client-email", "", "Client email")
	cmd.Flags().String("client-phone", "", "Client phone")
	cmd.Flags().String("client-trn", "", "Client tax registration number")
	cmd.Flags().String("number", "", "New invoice number")
	cmd.Flags().String("date", "", "Invoice date")
	cmd.Flags().String("due", "", "Due date")
	cmd.Flags().Bool("no-due", false, "Remove the due date")
}

var invoicesNextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Show the number the next invoice will receive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := appInstance.InvoiceService.NextNumber(context.Background())
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		fmt.Println(number)
		return nil
	},
}

var invoicesAddItemCmd = &cobra.Command{
	Use:   "add-item [invoice] [description;quantity;price[;unit]]",
	Short: "Add a line item to an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		item, err := parseItem(args[1])
		if err != nil {
			return err
		}

		inv, err = appInstance.InvoiceService.AddItem(ctx, inv.ID, item)
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		fmt.Printf("✓ Added %q to invoice %s\n", item.Description, inv.Number)
		printTotals(inv.Totals)
		return nil
	},
}

var invoicesEditItemCmd = &cobra.Command{
	Use:   "edit-item [invoice] [item_id] [description;quantity;price[;unit]]",
	Short: "Replace a line item on an invoice",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		itemID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid item ID: %w", err)
		}
		item, err := parseItem(args[2])
		if err != nil {
			return err
		}

		inv, err = appInstance.InvoiceService.UpdateItem(ctx, inv.ID, itemID, item)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		fmt.Printf("✓ Updated item %d on invoice %s\n", itemID, inv.Number)
		printTotals(inv.Totals)
		return nil
	},
}

var invoicesRemoveItemCmd = &cobra.Command{
	Use:   "remove-item [invoice] [item_id]",
	Short: "Remove a line item from an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		itemID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid item ID: %w", err)
		}

		inv, err = appInstance.InvoiceService.RemoveItem(ctx, inv.ID, itemID)
		if err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}

		fmt.Printf("✓ Removed item %d from invoice %s\n", itemID, inv.Number)
		printTotals(inv.Totals)
		return nil
	},
}

var invoicesNotesCmd = &cobra.Command{
	Use:   "notes [invoice] [text]",
	Short: "Set the notes printed on an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := appInstance.InvoiceService.SetNotes(ctx, inv.ID, args[1]); err != nil {
			return fmt.Errorf("failed to set notes: %w", err)
		}

		fmt.Printf("✓ Notes updated on invoice %s\n", inv.Number)
		return nil
	},
}

var invoicesStatusCmd = &cobra.Command{
	Use:   "status [invoice] [draft|pending|paid]",
	Short: "Change an invoice's status",
	Long: `Change an invoice's status. Statuses move forward from draft to pending to
paid; use --force to move an invoice backwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		status, err := domain.ParseInvoiceStatus(args[1])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		if _, err := appInstance.InvoiceService.SetStatus(ctx, inv.ID, status, force); err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as %s\n", inv.Number, status)
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [invoice]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete invoice %s for %s?", inv.Number, inv.Client.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.Delete(ctx, inv.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s deleted\n", inv.Number)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [invoice]",
	Short: "Show invoice details styled with the active template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		tmpl, err := appInstance.Templates.GetActive()
		if err != nil {
			return fmt.Errorf("failed to load template: %w", err)
		}
		doc := appInstance.Renderer.Render(inv, tmpl)

		fmt.Print(previewDocument(doc))
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export [invoice]",
	Short: "Export an invoice to PDF",
	Long: `Export an invoice to a multi-page A4 PDF using the active template,
or the template named with --template.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		inv, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		var res *export.Result
		if templateID, _ := cmd.Flags().GetString("template"); templateID != "" {
			tmpl, ok := appInstance.Templates.Get(templateID)
			if !ok {
				return fmt.Errorf("template %q not found", templateID)
			}
			res, err = appInstance.Exporter.ExportWithTemplate(ctx, inv, tmpl)
		} else {
			res, err = appInstance.Exporter.Export(ctx, inv)
		}
		if err != nil {
			return fmt.Errorf("failed to export invoice: %w", err)
		}

		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = appInstance.Config.Invoice.OutputDir
		}
		path, err := export.SaveFile(dir, res)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Exported invoice %s (%d page(s), template %s)\n", inv.Number, res.Pages, res.TemplateID)
		fmt.Printf("  %s\n", path)
		return nil
	},
}

// previewDocument renders doc as styled terminal text
func previewDocument(doc *render.Document) string {
	accent := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", doc.Accent.R, doc.Accent.G, doc.Accent.B))
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	rule := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("=", 80))

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s  %s\n", title.Render("INVOICE "+doc.Number), label.Render(string(doc.Status)))
	fmt.Fprintln(&b, rule)

	fmt.Fprintf(&b, "%s %s\n", label.Render("From:"), doc.Seller.Name)
	if doc.Seller.Address != "" {
		fmt.Fprintf(&b, "      %s\n", doc.Seller.Address)
	}
	fmt.Fprintf(&b, "%s %s\n", label.Render("To:  "), doc.Client.Name)
	if doc.Client.Address != "" {
		fmt.Fprintf(&b, "      %s\n", doc.Client.Address)
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n\n",
		label.Render("Date:"), doc.IssueDate.Format("2006-01-02"),
		label.Render("Due:"), formatDue(doc.DueDate))

	fmt.Fprintln(&b, title.Render(fmt.Sprintf("%-4s %-36s %8s %-6s %10s %10s", "#", "Description", "Qty", "Unit", "Price", "Amount")))
	fmt.Fprintln(&b, strings.Repeat("-", 80))
	for i, line := range doc.Lines {
		fmt.Fprintf(&b, "%-4d %-36s %8s %-6s %10.2f %10.2f\n",
			i+1,
			truncate(line.Description, 36),
			strconv.FormatFloat(line.Quantity, 'f', -1, 64),
			truncate(line.Unit, 6),
			line.UnitPrice,
			line.Amount,
		)
	}
	fmt.Fprintln(&b, strings.Repeat("-", 80))

	fmt.Fprintf(&b, "%66s %12.2f\n", "Subtotal", doc.Totals.Subtotal)
	fmt.Fprintf(&b, "%66s %12.2f\n", fmt.Sprintf("VAT (%s%%)", strconv.FormatFloat(doc.Totals.TaxRatePercent, 'f', -1, 64)), doc.Totals.TaxAmount)
	fmt.Fprintf(&b, "%66s %s\n", "Total", title.Render(fmt.Sprintf("%12.2f", doc.Totals.Total)))

	if doc.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", label.Render("Notes"), doc.Notes)
	}
	if doc.ShowPayment() {
		fmt.Fprintf(&b, "\n%s\n", label.Render("Payment details"))
		for _, kv := range [][2]string{
			{"Bank", doc.Payment.BankName},
			{"Account name", doc.Payment.AccountName},
			{"Account no.", doc.Payment.AccountNumber},
			{"IBAN", doc.Payment.IBAN},
			{"SWIFT", doc.Payment.SwiftCode},
		} {
			if kv[1] != "" {
				fmt.Fprintf(&b, "  %-13s %s\n", kv[0]+":", kv[1])
			}
		}
	}
	if doc.FooterText != "" {
		fmt.Fprintf(&b, "\n%s\n", label.Render(doc.FooterText))
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
	invoicesCmd.AddCommand(invoicesNextNumberCmd)
	invoicesCmd.AddCommand(invoicesAddItemCmd)
	invoicesCmd.AddCommand(invoicesEditItemCmd)
	invoicesCmd.AddCommand(invoicesRemoveItemCmd)
	invoicesCmd.AddCommand(invoicesNotesCmd)
	invoicesCmd.AddCommand(invoicesStatusCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)

	// List flags
	invoicesListCmd.Flags().String("client", "", "Filter by client name")
	invoicesListCmd.Flags().String("status", "", "Filter by status (draft, pending, paid)")

	// Create flags
	invoicesCreateCmd.Flags().String("customer", "", "Saved customer ID")
	invoicesCreateCmd.Flags().String("client-name", "", "Client name (when not using --customer)")
	invoicesCreateCmd.Flags().String("client-address", "", "Client address")
	invoicesCreateCmd.Flags().String("client-email", "", "Client email")
	invoicesCreateCmd.Flags().String("client-phone", "", "Client phone")
	invoicesCreateCmd.Flags().String("client-trn", "", "Client tax registration number")
	invoicesCreateCmd.Flags().StringArray("item", nil, "Line item as description;quantity;price[;unit] (repeatable)")
	invoicesCreateCmd.Flags().String("number", "", "Override the allocated invoice number")
	invoicesCreateCmd.Flags().String("date", "today", "Invoice date")
	invoicesCreateCmd.Flags().String("due", "", "Due date (defaults to the configured payment terms)")
	invoicesCreateCmd.Flags().String("notes", "", "Notes printed on the invoice")

	addInvoiceEditFlags(invoicesEditCmd)

	invoicesStatusCmd.Flags().Bool("force", false, "Allow moving the status backwards")
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	invoicesExportCmd.Flags().String("template", "", "Template ID (defaults to the active template)")
	invoicesExportCmd.Flags().String("out", "", "Output directory (defaults to invoice.output_dir)")
}
