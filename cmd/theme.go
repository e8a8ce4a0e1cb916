package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light]",
	Short: "Show or set the preview theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(a.Theme())
			return nil
		}
		if args[0] != "dark" && args[0] != "light" {
			return fmt.Errorf("unknown theme %q (want dark or light)", args[0])
		}
		a.SetTheme(args[0])
		fmt.Printf("Theme set to %s.\n", args[0])
		return nil
	},
}

var panelCmd = &cobra.Command{
	Use:   "panel [width]",
	Short: "Show or set the preview panel width (a CSS width, e.g. 60% or 900px)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(a.PanelWidth())
			return nil
		}
		a.SetPanelWidth(args[0])
		fmt.Printf("Panel width set to %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(panelCmd)
}
