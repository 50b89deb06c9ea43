package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Totals per program across all extracts",
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.loadAll(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printEmpty()
		return nil
	}

	total := pipeline.Summarize(records)
	programs := pipeline.ProgramTotals(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle("AID DISBURSEMENT  " + yearLabel()))
	fmt.Println()

	rows := make([][]string, 0, len(programs)+2)
	for _, st := range programs {
		rows = append(rows, []string{
			string(st.Program),
			cli.FormatNumber(int64(st.Records)),
			cli.FormatRupiah(st.TotalAmount),
			cli.FormatShare(st.TotalAmount, total.TotalAmount),
			cli.FormatMeanDays(st.MeanDuration),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Total",
		cli.FormatNumber(int64(total.Records)),
		cli.FormatRupiah(total.TotalAmount),
		"100.0%",
		cli.FormatMeanDays(total.MeanDuration),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Program", "Records", "Disbursed", "Share", "Avg Duration"},
		Rows:    rows,
	}))

	fmt.Println()
	maxAmount := decimal.Zero
	for _, st := range programs {
		maxAmount = decimal.Max(maxAmount, st.TotalAmount)
	}
	for _, st := range programs {
		fmt.Println(cli.RenderHorizontalBar(
			string(st.Program), 12,
			st.TotalAmount.InexactFloat64(), maxAmount.InexactFloat64(), 30,
			cli.FormatRupiahShort(st.TotalAmount),
		))
	}
	return nil
}
