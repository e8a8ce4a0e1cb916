package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"atelier/compare"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, restore, and compare version history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List version history, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		entries := a.History()
		if len(entries) == 0 {
			fmt.Println("No version history.")
			return nil
		}
		for i, e := range entries {
			fmt.Printf("%3d  %s  %8d bytes\n", i, e.Timestamp.Format("2006-01-02 15:04:05"), len(e.Code))
		}
		return nil
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <index>",
	Short: "Restore a version as the current app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("expected a numeric version index, got %q", args[0])
		}

		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		if !confirm(fmt.Sprintf("Replace the current app with version %d?", i)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := a.RestoreVersion(i); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}
		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Restored version %d. The overwritten version is kept for one comparison.\n", i)
		return nil
	},
}

var historyCompareCmd = &cobra.Command{
	Use:   "compare [index]",
	Short: "Diff the current app against the previous version or a history entry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		var cmp *compare.Comparison
		if len(args) == 0 {
			cmp, err = a.CompareWithPrevious()
		} else {
			var i int
			if i, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("expected a numeric version index, got %q", args[0])
			}
			cmp, err = a.CompareWithVersion(i)
		}
		if err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}

		changes := cmp.Lines()
		added, removed := compare.Stats(changes)
		fmt.Printf("Comparing against %s: +%d -%d\n", cmp.Label, added, removed)
		printChanges(changes)
		a.CloseComparison()
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all state and version history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		if !confirm("Erase the current app, all state, and the entire version history?") {
			fmt.Println("Cancelled.")
			return nil
		}
		a.ClearAll()
		fmt.Println("Cleared.")
		return nil
	},
}

func printChanges(changes []compare.LineChange) {
	for _, c := range changes {
		prefix := "  "
		switch c.Type {
		case compare.Added:
			prefix = "+ "
		case compare.Removed:
			prefix = "- "
		default:
			// Context runs can be long; the marks are what matter here.
			continue
		}
		for _, line := range splitKeepNonEmpty(c.Text) {
			fmt.Printf("%s%s\n", prefix, line)
		}
	}
}

func splitKeepNonEmpty(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRestoreCmd)
	historyCmd.AddCommand(historyCompareCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
