package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/config"
	"github.com/ydsf-surabaya/aidboard/internal/logging"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/store"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

var (
	flagConfig   string
	flagDataDir  string
	flagYears    []int
	flagProgram  string
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

// Resolved in PersistentPreRunE.
var (
	appCfg config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aidboard",
	Short: "Aid disbursement dashboard",
	Long: "Explore the foundation's aid-disbursement extracts: program totals, yearly trends,\n" +
		"descriptive statistics and per-cluster profiles.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding the program_<name>.csv extracts")
	rootCmd.PersistentFlags().IntSliceVarP(&flagYears, "year", "y", nil, "Limit to year (repeatable, default all)")
	rootCmd.PersistentFlags().StringVarP(&flagProgram, "program", "p", "", "Program name (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the dataset cache, reparse every extract")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// setup loads the config and logger shared by every command.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	appCfg = cfg

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger = logging.New(logging.Config{Level: level, JSON: cfg.Log.JSON})
	theme.SetActive(cfg.Appearance.Theme)

	if flagDataDir == "" {
		flagDataDir = config.GetDataDir(cfg)
	}
	return nil
}

// session bundles a configured loader with the caches backing it.
type session struct {
	loader  *pipeline.Loader
	memory  *pipeline.MemoryCache
	disk    *store.Cache
	catalog *profile.Catalog
}

// openSession builds the loader for the current flags and config. The
// SQLite cache is skipped with a notice when it cannot be opened.
func openSession() (*session, error) {
	catalog := profile.DefaultCatalog()
	if path := appCfg.Catalog.Path; path != "" {
		c, err := profile.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	loader := pipeline.NewLoader(flagDataDir)
	loader.Files = appCfg.Files
	loader.Options = appCfg.SourceOptions()
	loader.Logger = logger
	loader.Progress = func(current, total int) {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "\r  Loading %s", cli.RenderProgressBar(current, total, 24))
		}
	}

	s := &session{loader: loader, catalog: catalog}
	if flagNoCache || !appCfg.Cache.Enabled {
		return s, nil
	}

	mem, err := pipeline.NewMemoryCache(appCfg.Cache.MemoryEntries)
	if err != nil {
		return nil, err
	}
	s.memory = mem

	disk, err := store.Open(pipeline.CachePath())
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache unavailable, parsing extracts directly\n")
		}
		logger.Debug("cache open failed", "err", err)
		loader.Cache = mem
		return s, nil
	}
	s.disk = disk
	loader.Cache = pipeline.Tiered(mem, disk)
	return s, nil
}

func (s *session) Close() {
	if s.disk != nil {
		_ = s.disk.Close()
	}
}

// loadAll loads every program and applies the --year filter.
func (s *session) loadAll(ctx context.Context) ([]model.Record, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading extracts from %s\n", flagDataDir)
	}
	ds, err := s.loader.LoadAll(ctx)
	if !flagQuiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, err
	}
	return pipeline.FilterByYears(ds.Records, flagYears...), nil
}

// loadProgram loads one program and applies the --year filter.
func (s *session) loadProgram(ctx context.Context, p model.Program) ([]model.Record, error) {
	ds, err := s.loader.LoadProgram(ctx, p)
	if err != nil {
		return nil, err
	}
	return pipeline.FilterByYears(ds.Records, flagYears...), nil
}

// resolveProgram returns the program named by --program or the configured
// default. required reports an error when neither is set.
func resolveProgram(required bool) (model.Program, bool, error) {
	name := flagProgram
	if name == "" {
		name = appCfg.General.DefaultProgram
	}
	if name == "" {
		if required {
			return "", false, errors.New("no program selected: pass --program or set general.default_program")
		}
		return "", false, nil
	}
	p, ok := model.ParseProgram(name)
	if !ok {
		return "", false, fmt.Errorf("%w: %q", pipeline.ErrUnknownProgram, name)
	}
	return p, true, nil
}

// yearLabel describes the active --year filter for titles.
func yearLabel() string {
	if len(flagYears) == 0 {
		return "All years"
	}
	parts := make([]string, len(flagYears))
	for i, y := range flagYears {
		parts[i] = cli.FormatYear(y)
	}
	return strings.Join(parts, ", ")
}

func printEmpty() {
	fmt.Println()
	fmt.Println("  No records match the selected filters.")
}
