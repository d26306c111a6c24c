package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage invoice templates",
	Long: `List, select, and customize the templates used to render invoices.

Built-in templates (classic, modern, professional) can be customized but not deleted.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		active, err := appInstance.Templates.GetActive()
		if err != nil {
			return err
		}

		fmt.Printf("  %-44s %-20s %-12s %s\n", "ID", "Name", "Font", "Color")
		fmt.Println("-----------------------------------------------------------------------------------------")
		for _, t := range appInstance.Templates.List() {
			marker := " "
			if t.ID == active.ID {
				marker = "*"
			}
			fmt.Printf("%s %-44s %-20s %-12s %s\n",
				marker,
				truncate(t.ID, 44),
				truncate(t.Name, 20),
				truncate(render.FirstFamily(t.Settings.FontFamily), 12),
				swatch(t.Settings.PrimaryColor),
			)
		}
		fmt.Println("\n* active template")
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a template's settings (defaults to the active template)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var t domain.Template
		if len(args) == 0 {
			var err error
			if t, err = appInstance.Templates.GetActive(); err != nil {
				return err
			}
		} else {
			var ok bool
			if t, ok = appInstance.Templates.Get(args[0]); !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
		}

		kind := "built-in"
		if t.Custom {
			kind = "custom"
		}
		fmt.Printf("Template: %s (%s)\n", t.Name, kind)
		fmt.Printf("  ID: %s\n", t.ID)
		if t.Description != "" {
			fmt.Printf("  Description: %s\n", t.Description)
		}
		fmt.Printf("  Primary color: %s\n", swatch(t.Settings.PrimaryColor))
		fmt.Printf("  Font family: %s\n", t.Settings.FontFamily)
		fmt.Printf("  Show logo: %t\n", t.Settings.ShowLogo)
		fmt.Printf("  Show payment details: %t\n", t.Settings.ShowPaymentDetails)
		fmt.Printf("  Show signature: %t\n", t.Settings.ShowSignature)
		if t.Settings.FooterText != "" {
			fmt.Printf("  Footer: %s\n", t.Settings.FooterText)
		}
		return nil
	},
}

var templatesUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Make a template active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Templates.SetActive(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to activate template: %w", err)
		}
		fmt.Printf("✓ Active template: %s\n", args[0])
		return nil
	},
}

var templatesCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a custom template and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nt := templates.NewTemplate{Name: args[0]}
		nt.Description, _ = cmd.Flags().GetString("description")

		if from, _ := cmd.Flags().GetString("from"); from != "" {
			base, ok := appInstance.Templates.Get(from)
			if !ok {
				return fmt.Errorf("template %q not found", from)
			}
			settings := base.Settings
			nt.Settings = &settings
		}

		ctx := context.Background()
		t, err := appInstance.Templates.Create(ctx, nt)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		// Settings flags are applied on top of the copied settings
		if patch := settingsPatch(cmd); patch != (templates.SettingsPatch{}) {
			if t, err = appInstance.Templates.UpdateSettings(ctx, t.ID, patch); err != nil {
				return fmt.Errorf("failed to apply settings: %w", err)
			}
		}

		fmt.Printf("✓ Template created and activated: %s\n", t.Name)
		fmt.Printf("  ID: %s\n", t.ID)
		return nil
	},
}

var templatesSetCmd = &cobra.Command{
	Use:   "set [id]",
	Short: "Change a template's settings",
	Long: `Change a template's settings. Only the flags given are changed.

Examples:
  invoicedesk templates set modern --color "#0EA5E9"
  invoicedesk templates set classic --show-signature=false --footer "Thank you!"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := settingsPatch(cmd)
		if patch == (templates.SettingsPatch{}) {
			return fmt.Errorf("no settings given")
		}
		if patch.PrimaryColor != nil {
			if _, ok := render.ParseHexColor(*patch.PrimaryColor); !ok {
				return fmt.Errorf("invalid color %q: expected #RRGGBB", *patch.PrimaryColor)
			}
		}

		t, err := appInstance.Templates.UpdateSettings(context.Background(), args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}

		fmt.Printf("✓ Template %s updated\n", t.Name)
		return nil
	},
}

var templatesRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := templates.Patch{Name: &args[1]}
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			patch.Description = &desc
		}

		t, err := appInstance.Templates.Update(context.Background(), args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to rename template: %w", err)
		}

		fmt.Printf("✓ Template renamed: %s\n", t.Name)
		return nil
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a custom template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.Templates.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}

		fmt.Printf("✓ Template %s deleted\n", args[0])
		fmt.Printf("  Active template: %s\n", appInstance.Templates.ActiveID())
		return nil
	},
}

// settingsPatch collects the settings flags that were explicitly set
func settingsPatch(cmd *cobra.Command) templates.SettingsPatch {
	var patch templates.SettingsPatch
	flags := cmd.Flags()

	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		patch.PrimaryColor = &v
	}
	if flags.Changed("font") {
		v, _ := flags.GetString("font")
		patch.FontFamily = &v
	}
	if flags.Changed("footer") {
		v, _ := flags.GetString("footer")
		patch.FooterText = &v
	}
	if flags.Changed("show-logo") {
		v, _ := flags.GetBool("show-logo")
		patch.ShowLogo = &v
	}
	if flags.Changed("show-payment") {
		v, _ := flags.GetBool("show-payment")
		patch.ShowPaymentDetails = &v
	}
	if flags.Changed("show-signature") {
		v, _ := flags.GetBool("show-signature")
		patch.ShowSignature = &v
	}
	return patch
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("color", "", "Primary color (#RRGGBB)")
	cmd.Flags().String("font", "", "Font family")
	cmd.Flags().String("footer", "", "Footer text")
	cmd.Flags().Bool("show-logo", true, "Show the company logo")
	cmd.Flags().Bool("show-payment", true, "Show payment details")
	cmd.Flags().Bool("show-signature", true, "Show the signature")
}

// swatch renders hex in its own color
func swatch(hex string) string {
	if _, ok := render.ParseHexColor(hex); !ok {
		return hex
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(hex)
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesUseCmd)
	templatesCmd.AddCommand(templatesCreateCmd)
	templatesCmd.AddCommand(templatesSetCmd)
	templatesCmd.AddCommand(templatesRenameCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)

	templatesCreateCmd.Flags().String("description", "", "Template description")
	templatesCreateCmd.Flags().String("from", "", "Copy settings from this template")
	addSettingsFlags(templatesCreateCmd)
	addSettingsFlags(templatesSetCmd)

	templatesRenameCmd.Flags().String("description", "", "New description")
}
