package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/corpus"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/span"
)

// inputFlags describes one reference/predicted pair on the command line.
type inputFlags struct {
	example  string // JSON example file, alternative to the four flags below
	ref      string // tree notation or @file
	pred     string
	refBnds  string // boundary file (.tsv or .json)
	predBnds string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.example, "example", "", "JSON file holding one example (same shape as a corpus line)")
	cmd.Flags().StringVar(&f.ref, "ref", "", "reference tree in bracket notation, or @file")
	cmd.Flags().StringVar(&f.pred, "pred", "", "predicted tree in bracket notation, or @file")
	cmd.Flags().StringVar(&f.refBnds, "ref-boundaries", "", "reference leaf boundaries (.tsv or .json)")
	cmd.Flags().StringVar(&f.predBnds, "pred-boundaries", "", "predicted leaf boundaries (.tsv or .json)")
	cmd.MarkFlagsMutuallyExclusive("example", "ref")
	cmd.MarkFlagsMutuallyExclusive("example", "pred")
}

// load assembles the example from whichever inputs were given.
func (f *inputFlags) load() (corpus.Example, error) {
	if f.example != "" {
		data, err := os.ReadFile(f.example)
		if err != nil {
			return corpus.Example{}, err
		}
		var e corpus.Example
		if err := json.Unmarshal(data, &e); err != nil {
			return e, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: invalid example", f.example)
		}
		return e, nil
	}

	if f.ref == "" || f.pred == "" {
		return corpus.Example{}, fmt.Errorf("--ref and --pred are required (or use --example)")
	}
	if f.refBnds == "" || f.predBnds == "" {
		return corpus.Example{}, fmt.Errorf("--ref-boundaries and --pred-boundaries are required")
	}

	var (
		e   corpus.Example
		err error
	)
	if e.Reference, err = readNotation(f.ref); err != nil {
		return e, err
	}
	if e.Predicted, err = readNotation(f.pred); err != nil {
		return e, err
	}
	if e.ReferenceBoundaries, err = readBoundaryFile(f.refBnds); err != nil {
		return e, err
	}
	if e.PredictedBoundaries, err = readBoundaryFile(f.predBnds); err != nil {
		return e, err
	}
	return e, nil
}

// readNotation returns s, or the contents of the file when s is "@path".
func readNotation(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readBoundaryFile(path string) ([]span.Boundary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bs, err := span.ReadBoundaries(f, span.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bs, nil
}

// scoreFlags are the alignment options shared by score, eval and render.
type scoreFlags struct {
	strict    bool
	threshold float64
	epsilon   float64
	refresh   bool
}

func (f *scoreFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "disable flexible terminal alignment (terminals match only the same leaf index)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", corpus.DefaultThreshold, "minimum IoU for a pair to be matched")
	cmd.Flags().Float64Var(&f.epsilon, "epsilon", corpus.DefaultEpsilon, "zero-length tolerance for intervals")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached scores")
}

// options applies the flags that were set over the config file values.
func (f *scoreFlags) options(cmd *cobra.Command, cfg *Config) (corpus.Options, error) {
	opts := cfg.corpusOptions()
	if cmd.Flags().Changed("strict") {
		opts.Flexible = !f.strict
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if cmd.Flags().Changed("epsilon") {
		opts.Epsilon = f.epsilon
	}
	opts.Refresh = f.refresh
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
