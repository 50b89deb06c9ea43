package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report rows whose field count differs from the header",
	Long: "Re-read a delimited extract with the configured delimiter and encoding and print\n" +
		"every row whose field count differs from the header. Prints nothing for a clean file.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	report, err := source.CheckColumns(args[0], appCfg.SourceOptions())
	if err != nil {
		return err
	}
	if report.OK() {
		return nil
	}

	sep := string(appCfg.SourceOptions().Delimiter)
	for _, m := range report.Mismatches {
		fmt.Printf("Row %d (line %d): expected %d fields, found %d\n", m.Index, m.Line, m.Want, m.Got)
		fmt.Printf("  %s\n\n", strings.Join(m.Row, sep))
	}
	return fmt.Errorf("%d of %d rows in %s have the wrong number of fields",
		len(report.Mismatches), report.Rows, args[0])
}
