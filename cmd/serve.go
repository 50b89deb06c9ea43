package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/server"
)

var (
	flagServeAddr  string
	flagServeWatch bool
	flagEventsBuf  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard data over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", true, "Drop cached extracts when their files change")
	serveCmd.Flags().IntVar(&flagEventsBuf, "events-buffer", 200, "Invalidation events kept for /v1/events")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	// Without a memory tier there is nothing for the watcher to drop, and the
	// SQLite tier already misses on mtime/size changes.
	if sess.memory == nil && !flagNoCache && appCfg.Cache.Enabled {
		return errors.New("memory cache unavailable")
	}
	sess.loader.Progress = nil

	addr := flagServeAddr
	if addr == "" {
		addr = appCfg.Server.Addr
	}

	svc := server.New(server.Config{
		Addr:         addr,
		Loader:       sess.loader,
		Catalog:      sess.catalog,
		Memory:       sess.memory,
		Logger:       logger,
		Watch:        flagServeWatch && sess.memory != nil,
		EventsBuffer: flagEventsBuf,
	})

	fmt.Printf("  aidboard listening on http://%s\n", addr)
	fmt.Printf("  Serving extracts from %s\n", flagDataDir)
	if sess.disk != nil {
		fmt.Printf("  Cache: %s\n", pipeline.CachePath())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
