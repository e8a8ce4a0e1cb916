package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"atelier/app"
	"atelier/config"
	"atelier/importer"
	"atelier/llm"
	"atelier/preview"
	"atelier/store"
)

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Atelier is an AI-assisted single-page app builder",
	Long: `Atelier builds complete single-page web apps from natural-language
descriptions. Describe an app to generate it, refine it with follow-up
requests, import or clone existing HTML, and browse the version history.

Running atelier without a subcommand starts the live preview server and
watches the working file for manual edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cfg, err := buildApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := preview.NewServer(a, logger())
		a.SetOnChange(func() {
			go server.NotifyReload()
		})

		// Manual edits flow through the working file: edit it with any
		// editor and the preview picks the change up.
		workingFile := filepath.Join(cfg.DataDir, "current.html")
		if err := writeWorkingFile(cfg, a.Code()); err != nil {
			return err
		}
		go func() {
			err := preview.WatchFile(ctx, workingFile, logger(), func(content string) {
				a.SetCode(content)
			})
			if err != nil {
				logger().Warn("working-file watcher stopped", "error", err)
			}
		}()

		fmt.Printf("Preview: http://%s\nWorking file: %s\n", cfg.PreviewAddr, workingFile)
		return server.ListenAndServe(ctx, cfg.PreviewAddr)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func logger() *slog.Logger {
	return slog.Default()
}

// buildApp wires the controller from configuration: store, LLM client, and
// repository fetcher.
func buildApp() (*app.App, *config.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(workDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DataDir == "" {
		return nil, nil, fmt.Errorf("no data directory configured (set data_dir via atelier config)")
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var st store.Store
	sqlStore, err := store.OpenSQLite(filepath.Join(cfg.DataDir, "store.db"))
	if err != nil {
		// Degrade to session-only state rather than refusing to start.
		logger().Warn("persistent store unavailable, state will not survive exit", "error", err)
		st = store.NewMemoryStore()
	} else {
		st = sqlStore
	}

	var client *llm.Client
	adapter, err := llm.CreateAdapter(cfg.Model, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		// Generation commands will fail with a clear message; everything
		// else (history, projects, preview) still works.
		logger().Warn("LLM adapter not configured", "error", err)
	} else {
		client = llm.NewClient(adapter, logger())
	}

	a := app.New(st, client, importer.NewFetcher(), logger())
	return a, cfg, nil
}

// writeWorkingFile exports the current document for external editing.
func writeWorkingFile(cfg *config.Config, code string) error {
	path := filepath.Join(cfg.DataDir, "current.html")
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write working file: %w", err)
	}
	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}
