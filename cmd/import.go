package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"atelier/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import a local HTML file as the current app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		content, err := importer.ReadLocalFile(args[0])
		if err != nil {
			return err
		}

		if err := a.ImportFile(filepath.Base(args[0]), content); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}
		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Imported %s.\n", args[0])
		return nil
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone <repository url>",
	Short: "Import the root index.html of a public repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		fmt.Println("Fetching...")
		if err := a.CloneRepo(context.Background(), args[0]); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}
		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Cloned %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(cloneCmd)
}
