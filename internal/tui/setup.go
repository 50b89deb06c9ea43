package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"

	"github.com/ydsf-surabaya/aidboard/internal/config"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

// setupValues holds the first-run form answers.
type setupValues struct {
	program string
	theme   string
	saveErr error
}

// newSetupForm builds the first-run form shown after the initial load.
func newSetupForm(found int, dataDir string, vals *setupValues) *huh.Form {
	programOpts := []huh.Option[string]{huh.NewOption("None", "")}
	for _, p := range model.Programs {
		programOpts = append(programOpts, huh.NewOption(string(p), string(p)))
	}
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}
	vals.theme = theme.Active.Name

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to aidboard").
				Description(fmt.Sprintf("Found %d of %d program extracts in %s.", found, len(model.Programs), dataDir)),
			huh.NewSelect[string]().
				Title("Program to open first").
				Options(programOpts...).
				Value(&vals.program),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithShowHelp(false)
}

// saveSetupConfig applies the form answers and persists them.
func (a *App) saveSetupConfig() {
	cfg, _ := config.Load(a.configPath)
	if cfg.General.DataDir == "" {
		cfg.General.DataDir = a.loader.DataDir
	}

	if a.setupVals.theme != "" {
		cfg.Appearance.Theme = a.setupVals.theme
		theme.SetActive(cfg.Appearance.Theme)
	}
	cfg.General.DefaultProgram = a.setupVals.program
	if p, ok := model.ParseProgram(a.setupVals.program); ok {
		a.cycleProgram(slices.Index(model.Programs, p) - a.program)
		a.recompute()
	}

	a.setupVals.saveErr = config.Save(a.configPath, cfg)
}
