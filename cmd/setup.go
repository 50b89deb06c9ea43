package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/config"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/source"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if cfg.General.DataDir == "" {
		cfg.General.DataDir = flagDataDir
	}

	files := source.ScanDir(flagDataDir, cfg.Files)
	fmt.Println()
	fmt.Println("  Welcome to aidboard!")
	fmt.Printf("  Found %d of %d program extracts in %s\n\n", source.CountPresent(files), len(files), flagDataDir)

	programOpts := []huh.Option[string]{huh.NewOption("None (ask each time)", "")}
	for _, p := range model.Programs {
		programOpts = append(programOpts, huh.NewOption(string(p), string(p)))
	}
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Data directory").
				Description("Folder holding program_<name>.csv").
				Value(&cfg.General.DataDir).
				Validate(validateDir),
			huh.NewSelect[string]().
				Title("Extract encoding").
				Options(
					huh.NewOption("Latin-1", "latin1"),
					huh.NewOption("Windows-1252", "windows-1252"),
					huh.NewOption("UTF-8", "utf-8"),
				).
				Value(&cfg.General.Encoding),
			huh.NewSelect[string]().
				Title("Default program").
				Options(programOpts...).
				Value(&cfg.General.DefaultProgram),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&cfg.Appearance.Theme),
			huh.NewConfirm().
				Title("Cache parsed extracts?").
				Value(&cfg.Cache.Enabled),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(flagConfig, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `aidboard setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func validateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot open %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
