package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a new app from a natural-language description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		fmt.Println("Generating...")
		if err := a.Generate(context.Background(), prompt); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}

		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Generated %d bytes. Run `atelier` to preview, `atelier refine` to iterate.\n", len(a.Code()))
		return nil
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine <change request>",
	Short: "Apply a natural-language change to the current app",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		request := strings.Join(args, " ")
		fmt.Println("Refining...")
		if err := a.Refine(context.Background(), request); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}

		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Refined. Compare against the previous version with `atelier history compare`.\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(refineCmd)
}
