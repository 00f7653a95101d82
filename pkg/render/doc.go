// Package render draws an alignment of two span trees.
//
// # Overview
//
// [ToDOT] writes both trees into one Graphviz digraph: the reference tree in
// one cluster, the prediction in another, and a dashed edge for every matched
// pair labelled with its IoU. Match edges do not constrain the layout, so each
// tree keeps its own top-to-bottom shape.
//
//	rep := metric.Evaluate(ref, pred)
//	dot := render.ToDOT(ref, pred, align.Result{Pairs: rep.Pairs, Weight: rep.Weight}, render.Options{})
//	svg, err := render.RenderSVG(dot)
//
// # Formats
//
// [RenderSVG] renders in-process with [github.com/goccy/go-graphviz]. [ToPDF]
// and [ToPNG] convert that SVG with the external rsvg-convert tool (librsvg).
package render
