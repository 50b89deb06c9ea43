// Package cmd implements the aidboard CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/config"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/source"
	"github.com/ydsf-surabaya/aidboard/internal/store"
)

var flagClearCache bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagClearCache, "clear-cache", false, "Drop every cached dataset")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}

	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(flagConfig) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:  %s\n", flagDataDir)
	fmt.Printf("    Encoding:        %s\n", cfg.General.Encoding)
	fmt.Printf("    Delimiter:       %q\n", cfg.General.Delimiter)
	if cfg.General.DefaultProgram != "" {
		fmt.Printf("    Default program: %s\n", cfg.General.DefaultProgram)
	}
	fmt.Println()

	fmt.Println("  [Files]")
	files := source.ScanDir(flagDataDir, cfg.Files)
	for _, f := range files {
		status := "missing"
		if f.Exists {
			status = cli.FormatBytes(f.Size)
		}
		fmt.Printf("    %-12s %s (%s)\n", f.Program, f.Path, status)
	}
	fmt.Println()

	fmt.Println("  [Catalog]")
	if cfg.Catalog.Path != "" {
		fmt.Printf("    Path: %s\n", cfg.Catalog.Path)
	} else {
		fmt.Println("    Path: built-in")
	}
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Enabled:        %v\n", cfg.Cache.Enabled)
	fmt.Printf("    Memory entries: %d\n", cfg.Cache.MemoryEntries)
	fmt.Printf("    Database:       %s\n", pipeline.CachePath())
	if db, err := store.Open(pipeline.CachePath()); err == nil {
		if flagClearCache {
			if err := db.Clear(); err != nil {
				_ = db.Close()
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Println("    Cleared.")
		}
		if n, err := db.DatasetCount(); err == nil {
			fmt.Printf("    Cached extracts: %d\n", n)
		}
		_ = db.Close()
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Printf("    JSON:  %v\n", cfg.Log.JSON)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `aidboard setup` to reconfigure.")
	return nil
}
