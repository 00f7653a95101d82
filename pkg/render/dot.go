package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/structiou/pkg/align"
	"github.com/matzehuels/structiou/pkg/span"
)

// Options configures alignment diagrams.
type Options struct {
	// Detailed adds the node index and interval to each label.
	Detailed bool

	// ReferenceTitle and PredictedTitle label the two clusters.
	// Empty values fall back to "reference" and "predicted".
	ReferenceTitle string
	PredictedTitle string
}

const (
	matchedFill  = "#d6eaf8"
	matchColor   = "#1f77b4"
	terminalFill = "#f4f6f6"
)

// ToDOT converts an alignment to Graphviz DOT. Pairs in r must index nodes
// of ref (A) and pred (B).
func ToDOT(ref, pred *span.Tree, r align.Result, opts Options) string {
	matchedA := make(map[int]bool, len(r.Pairs))
	matchedB := make(map[int]bool, len(r.Pairs))
	for _, p := range r.Pairs {
		matchedA[p.A] = true
		matchedB[p.B] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	writeCluster(&buf, "ref", orDefault(opts.ReferenceTitle, "reference"), "r", ref, matchedA, opts)
	writeCluster(&buf, "pred", orDefault(opts.PredictedTitle, "predicted"), "p", pred, matchedB, opts)

	for _, p := range r.Pairs {
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false, color=%q, fontcolor=%q, label=%q];\n",
			nodeID("r", p.A), nodeID("p", p.B), matchColor, matchColor, fmt.Sprintf("%.2f", p.IoU))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, name, title, prefix string, t *span.Tree, matched map[int]bool, opts Options) {
	fmt.Fprintf(buf, "  subgraph cluster_%s {\n", name)
	fmt.Fprintf(buf, "    label=%q;\n", title)
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    color=grey;\n")

	for i := 0; i < t.Len(); i++ {
		attrs := fmtAttrs(t, i, matched[i], opts.Detailed)
		fmt.Fprintf(buf, "    %q [%s];\n", nodeID(prefix, i), strings.Join(attrs, ", "))
	}
	for i := 0; i < t.Len(); i++ {
		for _, c := range t.Node(i).Children {
			fmt.Fprintf(buf, "    %q -> %q;\n", nodeID(prefix, i), nodeID(prefix, c))
		}
	}
	buf.WriteString("  }\n\n")
}

func nodeID(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}

func fmtLabel(t *span.Tree, i int, detailed bool) string {
	n := t.Node(i)
	label := n.Label
	if n.IsTerminal() {
		label += "\n" + n.Token
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\n#%d %s", label, i, t.Interval(i))
}

func fmtAttrs(t *span.Tree, i int, matched, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(t, i, detailed))}
	switch {
	case matched:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", matchedFill), fmt.Sprintf("color=%q", matchColor))
	case t.Node(i).IsTerminal():
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", terminalFill))
	}
	if !matched {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
