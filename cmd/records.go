package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
)

var (
	flagSearch  string
	flagCluster int
	flagLimit   int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List a program's transactions",
	RunE:  runRecords,
}

func init() {
	recordsCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Filter by recipient name or ID number (substring)")
	recordsCmd.Flags().IntVarP(&flagCluster, "cluster", "c", -1, "Filter to cluster id")
	recordsCmd.Flags().IntVarP(&flagLimit, "limit", "l", 25, "Maximum rows to print (0 = all)")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, _ []string) error {
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
	records = pipeline.Search(records, flagSearch)
	if cmd.Flags().Changed("cluster") {
		records = pipeline.FilterByCluster(records, flagCluster)
	}
	if len(records) == 0 {
		printEmpty()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s RECORDS  %s", p, yearLabel())))
	fmt.Println()

	shown := records
	if flagLimit > 0 && len(shown) > flagLimit {
		shown = shown[:flagLimit]
	}
	rows := make([][]string, 0, len(shown))
	for _, r := range shown {
		rows = append(rows, recordRow(r))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Recipient", "ID", "City", "Subprogram", "Funding", "Amount", "Duration", "Year", "Cluster"},
		Rows:    rows,
	}))

	if len(shown) < len(records) {
		fmt.Println()
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Showing %s of %s records (--limit 0 for all)",
			cli.FormatNumber(int64(len(shown))), cli.FormatNumber(int64(len(records))))))
	}
	return nil
}

func recordRow(r model.Record) []string {
	amount, duration := "-", "-"
	if r.Amount.Valid {
		amount = cli.FormatRupiah(r.Amount.Decimal)
	}
	if r.Duration.Valid {
		duration = cli.FormatDays(r.Duration.Decimal)
	}
	return []string{
		truncateLabel(r.Recipient, 24),
		r.IDNumber,
		r.City,
		truncateLabel(r.Subprogram, 20),
		r.FundingSource,
		amount,
		duration,
		cli.FormatYear(r.Year),
		cli.FormatCluster(r.Cluster, r.HasCluster),
	}
}
