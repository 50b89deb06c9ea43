package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/remote"
)

var (
	flagRemoteAddr    string
	flagRemoteCluster string
	flagRemoteJSON    bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Query a running aidboard server",
}

var remoteStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server's status and recent file changes",
	RunE:  runRemoteStatus,
}

var remoteProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile one cluster using the server's data",
	RunE:  runRemoteProfile,
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&flagRemoteAddr, "server", "", "Server address (default from config)")
	remoteProfileCmd.Flags().StringVarP(&flagRemoteCluster, "cluster", "c", "", "Cluster id or display name")
	remoteProfileCmd.Flags().BoolVar(&flagRemoteJSON, "json", false, "Print the profile as JSON")
	remoteCmd.AddCommand(remoteStatusCmd, remoteProfileCmd)
	rootCmd.AddCommand(remoteCmd)
}

func remoteClient() *remote.Client {
	addr := flagRemoteAddr
	if addr == "" {
		addr = appCfg.Server.Addr
	}
	return remote.NewClient(addr)
}

func runRemoteStatus(cmd *cobra.Command, _ []string) error {
	c := remoteClient()
	if c == nil {
		return errors.New("no server address: pass --server or set server.addr")
	}

	st, err := c.Status(cmd.Context())
	if err != nil {
		return err
	}
	events, err := c.Events(cmd.Context())
	if err != nil {
		return err
	}

	lastInv := "never"
	if !st.LastInvalidation.IsZero() {
		lastInv = humanize.Time(st.LastInvalidation)
	}
	rows := [][]string{
		{"Data dir", st.DataDir},
		{"Up since", st.StartedAt.Format(time.DateTime)},
		{"Extracts present", fmt.Sprintf("%d", st.ProgramsPresent)},
		{"Watching", strconv.FormatBool(st.Watching)},
		{"Cached datasets", fmt.Sprintf("%d", st.CacheEntries)},
		{"Invalidations", cli.FormatNumber(st.Invalidations)},
		{"Last invalidation", lastInv},
		{"Subscribers", fmt.Sprintf("%d", st.SubscriberCount)},
	}
	if st.LastError != "" {
		rows = append(rows, []string{"Last error", st.LastError})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     "Server Status",
		Rows:      rows,
		LeftAlign: true,
	}))

	if len(events) == 0 {
		return nil
	}
	eventRows := make([][]string, 0, len(events))
	for _, e := range events {
		eventRows = append(eventRows, []string{
			humanize.Time(e.Timestamp),
			e.Op,
			string(e.Program),
			e.Path,
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     "Recent Changes",
		Headers:   []string{"When", "Op", "Program", "Path"},
		Rows:      eventRows,
		LeftAlign: true,
	}))
	return nil
}

func runRemoteProfile(cmd *cobra.Command, _ []string) error {
	c := remoteClient()
	if c == nil {
		return errors.New("no server address: pass --server or set server.addr")
	}
	p, _, err := resolveProgram(true)
	if err != nil {
		return err
	}
	if flagRemoteCluster == "" {
		return errors.New("no cluster selected: pass --cluster")
	}

	id, err := strconv.Atoi(flagRemoteCluster)
	if err != nil {
		list, err := c.Clusters(cmd.Context(), p)
		if err != nil {
			return err
		}
		id = -1
		for _, ci := range list.Clusters {
			if ci.Name == flagRemoteCluster {
				id = ci.ID
				break
			}
		}
		if id < 0 {
			return fmt.Errorf("no cluster named %q in %s", flagRemoteCluster, p)
		}
	}

	cs, err := c.ClusterSummary(cmd.Context(), p, id, flagYears...)
	if err != nil {
		return err
	}
	out := profileOutput{
		Program:     cs.Program,
		Cluster:     cs.Cluster,
		Name:        cs.Name,
		Explanation: cs.Explanation,
		Years:       flagYears,
		Summary:     cs.Summary,
		Detail:      cs.Detail,
	}

	if flagRemoteJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printProfile(out)
	return nil
}
