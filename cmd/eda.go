package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

var (
	flagTop     int
	flagEDACity string
)

var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Descriptive statistics for one program (or all when none is selected)",
	RunE:  runEDA,
}

func init() {
	edaCmd.Flags().IntVarP(&flagTop, "top", "n", 10, "Entries per ranking")
	edaCmd.Flags().StringVar(&flagEDACity, "city", "", "Also rank the top 5 subprograms in this city")
	rootCmd.AddCommand(edaCmd)
}

func runEDA(cmd *cobra.Command, _ []string) error {
	p, selected, err := resolveProgram(false)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var records []model.Record
	title := "ALL PROGRAMS"
	if selected {
		records, err = sess.loadProgram(cmd.Context(), p)
		title = string(p)
	} else {
		records, err = sess.loadAll(cmd.Context())
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		printEmpty()
		return nil
	}

	stats := pipeline.Summarize(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", title, yearLabel())))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Records", cli.FormatNumber(int64(stats.Records))},
			{"Disbursed", cli.FormatRupiah(stats.TotalAmount)},
			{"Avg Duration", cli.FormatMeanDays(stats.MeanDuration)},
			{"Cities", cli.FormatNumber(int64(len(pipeline.TopValues(records, model.FieldCity, 0))))},
		},
	}))

	printCounts("Top cities", pipeline.TopValues(records, model.FieldCity, flagTop))
	printCounts("Top subprograms", pipeline.TopValues(records, model.FieldSubprogram, flagTop))

	fmt.Println()
	shares := profile.Distribution(records, model.FieldFundingSource)
	srows := make([][]string, 0, len(shares))
	for _, s := range shares {
		srows = append(srows, []string{s.Value, cli.FormatNumber(int64(s.Count)), cli.FormatPercent(s.Fraction)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Funding sources",
		Headers: []string{"Source", "Records", "Share"},
		Rows:    srows,
	}))

	printAmounts("Highest average amount by subprogram", pipeline.MeanAmountBy(records, model.FieldSubprogram, flagTop))
	printAmounts("Disbursed by funding source", pipeline.SumAmountBy(records, model.FieldFundingSource))

	fmt.Println()
	top := pipeline.TopAmounts(records, flagTop)
	arows := make([][]string, 0, len(top))
	for _, nc := range top {
		arows = append(arows, []string{cli.FormatRupiah(nc.Value), cli.FormatNumber(int64(nc.Count))})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Most frequent amounts",
		Headers: []string{"Amount", "Records"},
		Rows:    arows,
	}))

	if flagEDACity != "" {
		subs := pipeline.TopSubprogramsIn(records, flagEDACity, 5)
		if len(subs) == 0 {
			fmt.Println()
			fmt.Printf("  %s\n", cli.RenderMuted("No records for city "+flagEDACity+"."))
		}
		printCounts("Top 5 subprograms in "+flagEDACity, subs)
	}
	return nil
}

// printCounts renders a frequency ranking as a bar chart.
func printCounts(title string, counts []model.ValueCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderMuted(title))

	labelWidth, peak := 0, 0
	for _, c := range counts {
		labelWidth = max(labelWidth, min(len(c.Value), 28))
		peak = max(peak, c.Count)
	}
	for _, c := range counts {
		fmt.Println(cli.RenderHorizontalBar(
			truncateLabel(c.Value, 28), labelWidth,
			float64(c.Count), float64(peak), 30,
			cli.FormatNumber(int64(c.Count)),
		))
	}
}

func printAmounts(title string, groups []model.GroupAmount) {
	if len(groups) == 0 {
		return
	}
	fmt.Println()
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Group, cli.FormatRupiah(g.Amount), cli.FormatNumber(int64(g.Count))})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Group", "Amount", "Records"},
		Rows:    rows,
	}))
}

func truncateLabel(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
