package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/metric"
)

// scoreCommand creates the score command for a single tree pair.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		in        inputFlags
		sf        scoreFlags
		jsonOut   bool
		showPairs bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a predicted tree against a reference",
		Example: `  structiou score --ref "( NT ( NT I ) ( NT am ) )" --ref-boundaries ref.tsv \
                 --pred @pred.tree --pred-boundaries pred.json
  structiou score --example example.json --strict --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := in.load()
			if err != nil {
				return err
			}
			opts, err := sf.options(cmd, c.cfg)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			rep, cached, err := runner.ScoreWithCacheInfo(cmd.Context(), ex, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd, rep, cached)
			if showPairs && len(rep.Pairs) > 0 {
				fmt.Fprintln(out, pairsTable(rep.Pairs))
			}
			return nil
		},
	}

	in.register(cmd)
	sf.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full report as JSON")
	cmd.Flags().BoolVar(&showPairs, "pairs", false, "list matched node pairs")

	return cmd
}

func printReport(cmd *cobra.Command, rep metric.Report, cached bool) {
	out := cmd.OutOrStdout()
	printSuccess(out, "Struct-IoU %s", formatScore(rep.Score))
	printKeyValue(out, "weight", fmt.Sprintf("%.4f", rep.Weight))
	printKeyValue(out, "pairs", fmt.Sprintf("%d", len(rep.Pairs)))
	printKeyValue(out, "nodes", fmt.Sprintf("%d ref · %d pred", rep.ReferenceNodes, rep.PredictedNodes))
	mode := "flexible"
	if !rep.Flexible {
		mode = "strict"
	}
	printKeyValue(out, "terminals", mode)
	printDetail(out, "%s", cacheStatus(cached))
}
