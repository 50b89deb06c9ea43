package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List programs and their backing extracts",
	RunE:  runPrograms,
}

func init() {
	rootCmd.AddCommand(programsCmd)
}

func runPrograms(_ *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	files := sess.loader.Scan()

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROGRAMS"))
	fmt.Println()

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		status, size := "missing", "-"
		if f.Exists {
			status, size = "ok", cli.FormatBytes(f.Size)
		}
		rows = append(rows, []string{
			string(f.Program),
			filepath.Base(f.Path),
			status,
			size,
			cli.FormatNumber(int64(len(sess.catalog.Clusters(f.Program)))),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Program", "File", "Status", "Size", "Clusters"},
		Rows:    rows,
	}))

	if n := source.CountPresent(files); n < len(files) {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("  %d of %d extracts missing in %s", len(files)-n, len(files), flagDataDir)))
	}
	return nil
}
