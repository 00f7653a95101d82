package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/corpus"
	"github.com/matzehuels/structiou/pkg/errors"
)

// evalCommand creates the eval command for scoring a corpus manifest.
func (c *CLI) evalCommand() *cobra.Command {
	var (
		sf      scoreFlags
		workers int
		output  string
		jsonOut bool
		browse  bool
	)

	cmd := &cobra.Command{
		Use:   "eval <corpus.jsonl|corpus.json|corpus.toml>",
		Short: "Score every example in a corpus manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts, err := sf.options(cmd, c.cfg)
			if err != nil {
				return err
			}
			examples, err := corpus.Load(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			if cmd.Flags().Changed("workers") {
				runner.Workers = workers
			}

			prog := newProgress(logger)
			var spin *Spinner
			if !jsonOut && !browse {
				spin = newSpinnerTo(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Scoring %d examples...", len(examples)))
				runner.Progress = func(done, total int) {
					spin.SetMessage(fmt.Sprintf("Scoring examples %d/%d...", done, total))
				}
				spin.Start()
			}
			summary, err := runner.Run(ctx, examples, opts)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Scored %d examples", len(examples)))

			if output != "" {
				if err := errors.ValidatePath(output); err != nil {
					return err
				}
				if err := writeSummary(output, summary); err != nil {
					return err
				}
			}

			switch {
			case browse:
				_, err := tea.NewProgram(newResultListModel(summary), tea.WithContext(ctx)).Run()
				return err
			case jsonOut:
				return summary.WriteJSON(cmd.OutOrStdout())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resultsTable(summary.Results))
			printSummary(cmd, summary)
			if output != "" {
				printFile(out, output)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d examples failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", corpus.DefaultWorkers, "examples scored concurrently")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON summary to this file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the JSON summary instead of a table")
	cmd.Flags().BoolVar(&browse, "browse", false, "browse results interactively")
	cmd.MarkFlagsMutuallyExclusive("json", "browse")

	return cmd
}

func printSummary(cmd *cobra.Command, s *corpus.Summary) {
	out := cmd.OutOrStdout()
	if s.Scored == 0 {
		printError(out, "No examples scored")
	} else {
		printSuccess(out, "Mean Struct-IoU %s over %d examples", formatScore(s.Mean), s.Scored)
		printKeyValue(out, "min", fmt.Sprintf("%.4f", s.Min))
		printKeyValue(out, "max", fmt.Sprintf("%.4f", s.Max))
	}
	if s.Failed > 0 {
		printKeyValue(out, "failed", StyleError.Render(fmt.Sprintf("%d", s.Failed)))
	}
	printKeyValue(out, "cached", fmt.Sprintf("%d", s.CacheHits))
	printDetail(out, "run %s", s.RunID)
}

func writeSummary(path string, s *corpus.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
