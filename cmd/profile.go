package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

var (
	flagProfileCluster string
	flagJSON           bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile one cluster: medians, dominant values and insights",
	Long: "Profile one cluster of a program. --cluster takes an id or a catalog name.\n" +
		"On a terminal, a picker is shown for whatever is not given.",
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVarP(&flagProfileCluster, "cluster", "c", "", "Cluster id or display name")
	profileCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the profile as JSON")
	rootCmd.AddCommand(profileCmd)
}

type profileOutput struct {
	Program     model.Program  `json:"program"`
	Cluster     int            `json:"cluster"`
	Name        string         `json:"name"`
	Explanation string         `json:"explanation"`
	Years       []int          `json:"years,omitempty"`
	Summary     profile.Table  `json:"summary"`
	Detail      profile.Detail `json:"detail"`
}

func interactive() bool {
	fd := os.Stdout.Fd()
	return !flagJSON && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func runProfile(cmd *cobra.Command, _ []string) error {
	p, selected, err := resolveProgram(false)
	if err != nil {
		return err
	}
	if !selected {
		if !interactive() {
			return errors.New("no program selected: pass --program")
		}
		if p, err = pickProgram(); err != nil {
			return err
		}
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

	var id int
	switch {
	case flagProfileCluster != "":
		id, err = parseCluster(sess.catalog, p, flagProfileCluster)
		if err != nil {
			return err
		}
	case interactive():
		labels := sess.catalog.Labels(p, pipeline.ClusterIDs(records))
		if len(labels) == 0 {
			printEmpty()
			return nil
		}
		if id, err = pickCluster(labels); err != nil {
			return err
		}
	default:
		return errors.New("no cluster selected: pass --cluster")
	}

	subset := pipeline.FilterByCluster(records, id)
	out := profileOutput{
		Program:     p,
		Cluster:     id,
		Name:        sess.catalog.DisplayName(p, id),
		Explanation: sess.catalog.Explanation(p),
		Years:       flagYears,
		Summary:     profile.SummarizeCluster(subset),
		Detail:      profile.Describe(subset),
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printProfile(out)
	return nil
}

// parseCluster accepts a numeric id or a catalog display name.
func parseCluster(c *profile.Catalog, p model.Program, s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	if id, ok := c.Lookup(p, s); ok {
		return id, nil
	}
	return 0, fmt.Errorf("no cluster named %q in %s", s, p)
}

func pickProgram() (model.Program, error) {
	opts := make([]huh.Option[model.Program], len(model.Programs))
	for i, p := range model.Programs {
		opts[i] = huh.NewOption(string(p), p)
	}
	var p model.Program
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[model.Program]().
			Title("Program").
			Options(opts...).
			Value(&p),
	)).Run()
	return p, err
}

func pickCluster(labels []profile.ClusterLabel) (int, error) {
	opts := make([]huh.Option[int], len(labels))
	for i, l := range labels {
		opts[i] = huh.NewOption(l.Name, l.ID)
	}
	var id int
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Cluster").
			Options(opts...).
			Value(&id),
	)).Run()
	return id, err
}

func printProfile(out profileOutput) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(out.Name))
	fmt.Println()

	if out.Summary.Empty {
		fmt.Println(cli.RenderWarning("  No records match the selected filters."))
		fmt.Println()
	}

	rows := make([][]string, 0, len(out.Summary.Rows))
	for _, r := range out.Summary.Rows {
		rows = append(rows, []string{r.Label, r.Value})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     fmt.Sprintf("%s  %s", out.Program, yearLabel()),
		Headers:   []string{"Metric", "Value"},
		Rows:      rows,
		LeftAlign: true,
	}))

	if len(out.Detail.Insights) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", cli.RenderMuted("Insights"))
		for _, s := range out.Detail.Insights {
			fmt.Printf("  • %s\n", s)
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderMuted("  " + out.Explanation))
}
