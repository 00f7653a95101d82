// Package corpus scores collections of reference/predicted tree pairs.
//
// A corpus is a list of [Example] values, usually loaded from a manifest with
// [Load]. Manifests come in three encodings chosen by file extension:
//
//   - .jsonl / .ndjson: one JSON example per line
//   - .json: a JSON array of examples
//   - .toml: an array of [[example]] tables
//
// Boundaries may be written as ["label", start, end] triples or as objects
// with label, start and end keys in every encoding.
//
// # Scoring
//
// A [Runner] scores examples in parallel, caching each report under the
// content hash of the example and the alignment options:
//
//	runner := corpus.NewRunner(c, nil, logger)
//	summary, err := runner.Run(ctx, examples, corpus.DefaultOptions())
//	if err != nil {
//	    return err // only context cancellation or invalid options
//	}
//	fmt.Printf("mean Struct-IoU: %.4f\n", summary.Mean)
//
// Errors in a single example (malformed tree, boundary count mismatch) are
// recorded on its [Result] and do not stop the run. Results keep the input
// order regardless of how many workers run.
package corpus
