// Package pkg holds the libraries behind the structiou CLI and service.
//
// # Overview
//
// Struct-IoU compares two constituency trees whose terminals carry time or
// position boundaries, as produced by speech parsers. The packages are
// layered bottom-up:
//
//  1. [tree] - bracket notation parser and arena tree
//  2. [span] - leaf boundaries and per-node intervals
//  3. [align] - optimal order-preserving alignment of two span trees
//  4. [metric] - the normalized Struct-IoU score
//  5. [corpus] - manifests, parallel scoring, caching
//
// Supporting packages: [cache] (file, Redis, null backends), [errors] (coded
// errors), [observability] (hooks), [render] (alignment diagrams), [server]
// (HTTP API) and [buildinfo].
//
// # Data Flow
//
//	tree notation + boundaries
//	         ↓
//	    [tree].Parse, [span].Build
//	         ↓
//	    [align].Align
//	         ↓
//	    [metric].Score
//
// # Quick Start
//
//	ref := span.MustBuild(tree.MustParse(refNotation), refBoundaries)
//	pred := span.MustBuild(tree.MustParse(predNotation), predBoundaries)
//	score := metric.StructIoU(ref, pred, true)
package pkg
