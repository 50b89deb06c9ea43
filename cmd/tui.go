package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/config"
	"github.com/ydsf-surabaya/aidboard/internal/logging"
	"github.com/ydsf-surabaya/aidboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	// Nothing may write to stderr while the alt screen is up.
	sess.loader.Progress = nil
	sess.loader.Logger = logging.Discard()

	p, _, err := resolveProgram(false)
	if err != nil {
		return err
	}
	year := 0
	if len(flagYears) > 0 {
		year = flagYears[0]
	}

	app := tui.NewApp(tui.Options{
		Loader:     sess.loader,
		Catalog:    sess.catalog,
		ConfigPath: flagConfig,
		NeedSetup:  !config.Exists(flagConfig),
		Program:    p,
		Year:       year,
	})
	prog := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
