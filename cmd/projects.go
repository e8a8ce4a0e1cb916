package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage saved projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		projects := a.Projects()
		if len(projects) == 0 {
			fmt.Println("No saved projects.")
			return nil
		}

		names := make([]string, 0, len(projects))
		for name := range projects {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			p := projects[name]
			origin := "manual"
			if p.Source != nil {
				origin = fmt.Sprintf("%s: %s", p.Source.Kind, p.Source.Label)
			}
			fmt.Printf("%-24s %8d bytes  (%s)\n", name, len(p.GeneratedCode), origin)
		}
		return nil
	},
}

var projectsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current app under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		// A failed save must stay visible; the mapping is untouched and the
		// user can retry.
		if err := a.SaveProject(args[0]); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		fmt.Printf("Saved project %q.\n", args[0])
		return nil
	},
}

var projectsLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load a saved project as the current app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		if err := a.LoadProject(args[0]); err != nil {
			return fmt.Errorf("%s", a.ErrorMessage())
		}
		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		fmt.Printf("Loaded project %q.\n", args[0])
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := buildApp()
		if err != nil {
			return err
		}

		if !confirm(fmt.Sprintf("Delete project %q?", args[0])) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := a.DeleteProject(args[0]); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		fmt.Printf("Deleted project %q.\n", args[0])
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsSaveCmd)
	projectsCmd.AddCommand(projectsLoadCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
