package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/align"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/render"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "dot": true, "pdf": true, "png": true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path; stdout when empty
	format   string  // svg, dot, pdf or png; inferred from output when empty
	detailed bool    // show node index and interval in labels
	scale    float64 // PNG scale factor
}

// renderCommand creates the render command for alignment diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		in   inputFlags
		sf   scoreFlags
		opts = renderOpts{scale: 2}
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the alignment of a predicted tree against a reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			ex, err := in.load()
			if err != nil {
				return err
			}
			sopts, err := sf.options(cmd, c.cfg)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()
			ref, pred, rep, err := runner.ScoreTrees(cmd.Context(), ex, sopts)
			if err != nil {
				return err
			}

			dot := render.ToDOT(ref, pred, align.Result{Pairs: rep.Pairs, Weight: rep.Weight}, render.Options{
				Detailed: opts.detailed,
			})
			data, err := renderFormat(cmd.Context(), dot, format, opts.scale)
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := errors.ValidatePath(opts.output); err != nil {
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess(cmd.ErrOrStderr(), "Rendered alignment (score %s)", formatScore(rep.Score))
			printFile(cmd.ErrOrStderr(), opts.output)
			return nil
		},
	}

	in.register(cmd)
	sf.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node indices and intervals")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// resolveFormat returns the explicit format, or the output file's
// extension, or svg.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if !validFormats[format] {
			format = "svg"
		}
	}
	if !validFormats[format] {
		return "", fmt.Errorf("invalid format: %s (must be 'svg', 'dot', 'pdf', or 'png')", format)
	}
	return format, nil
}

func renderFormat(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case "pdf":
		return render.ToPDF(ctx, svg)
	case "png":
		return render.ToPNG(ctx, svg, scale)
	default:
		return svg, nil
	}
}
