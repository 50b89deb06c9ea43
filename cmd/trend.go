package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Disbursed amount per year and program",
	RunE:  runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	records, err := sess.loadAll(cmd.Context())
	if err != nil {
		return err
	}
	trend := pipeline.YearlyTrend(records)
	if len(trend) == 0 {
		printEmpty()
		return nil
	}

	// Pivot to one row per year.
	var years []int
	byYear := make(map[int]map[model.Program]decimal.Decimal)
	for _, yt := range trend {
		if _, ok := byYear[yt.Year]; !ok {
			years = append(years, yt.Year)
			byYear[yt.Year] = make(map[model.Program]decimal.Decimal)
		}
		byYear[yt.Year][yt.Program] = yt.Amount
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("YEARLY TREND  " + yearLabel()))
	fmt.Println()

	headers := []string{"Year"}
	for _, p := range model.Programs {
		headers = append(headers, string(p))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(years))
	totals := make([]float64, 0, len(years))
	for _, y := range years {
		row := []string{cli.FormatYear(y)}
		sum := decimal.Zero
		for _, p := range model.Programs {
			amt, ok := byYear[y][p]
			if !ok {
				row = append(row, "-")
				continue
			}
			sum = sum.Add(amt)
			row = append(row, cli.FormatRupiahShort(amt))
		}
		row = append(row, cli.FormatRupiahShort(sum))
		rows = append(rows, row)
		totals = append(totals, sum.InexactFloat64())
	}

	fmt.Print(cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
	fmt.Println()
	fmt.Printf("  %s  %s\n", cli.RenderMuted("Total by year"), cli.RenderSparkline(totals))

	// --program narrows the processing-time table; the trend stays cross-program.
	title := "Processing time"
	p, selected, err := resolveProgram(false)
	if err != nil {
		return err
	}
	if selected {
		records = pipeline.FilterByProgram(records, p)
		title += "  " + string(p)
	}

	durations := pipeline.MeanDurationByYear(records)
	if len(durations) > 0 {
		fmt.Println()
		drows := make([][]string, 0, len(durations))
		for _, yd := range durations {
			drows = append(drows, []string{
				cli.FormatYear(yd.Year),
				cli.FormatMeanDays(decimal.NewNullDecimal(yd.MeanDuration)),
				cli.FormatNumber(int64(yd.Count)),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   title,
			Headers: []string{"Year", "Avg Duration", "Records"},
			Rows:    drows,
		}))
	}
	return nil
}
