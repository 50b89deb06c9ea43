package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "List a program's clusters with their headline profile",
	RunE:  runClusters,
}

func init() {
	rootCmd.AddCommand(clustersCmd)
}

func runClusters(cmd *cobra.Command, _ []string) error {
	p, _, err := resolveProgram(true)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.loadProgram(cmd.Context(), p)
	if err != nil {
		return err
	}
	ids := pipeline.ClusterIDs(records)
	if len(ids) == 0 {
		printEmpty()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s CLUSTERS  %s", p, yearLabel())))
	fmt.Println()

	rows := make([][]string, 0, len(ids))
	for _, l := range sess.catalog.Labels(p, ids) {
		subset := pipeline.FilterByCluster(records, l.ID)
		table := profile.SummarizeCluster(subset)
		rows = append(rows, []string{
			l.Name,
			cli.FormatNumber(int64(len(subset))),
			table.Value(profile.LabelMedianAmount),
			table.Value(profile.LabelMedianDuration),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Cluster", "Records", "Median Amount", "Median Duration"},
		Rows:    rows,
	}))

	fmt.Println()
	fmt.Println(cli.RenderMuted("  " + sess.catalog.Explanation(p)))
	return nil
}
