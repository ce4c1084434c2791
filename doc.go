// Package taproot generates Python docstrings bottom-up along the call
// graph. For a target function it statically discovers every project-local
// function the target transitively calls, documents the leaves first, and
// feeds each function's generated documentation into the summarization of
// its callers — so a parent's docstring can incorporate the meaning of its
// children.
//
// # Pipeline
//
// Documenting a function runs in two phases:
//
//  1. Build: parse the defining file with tree-sitter, extract the names
//     called in the function body, resolve each to a project file (same
//     file first, then imports), and recurse — producing a call tree whose
//     expansion stops at already-documented functions, unresolvable names,
//     and cycles.
//
//  2. Generate: walk the tree in post-order. For each undocumented node,
//     concatenate the docstrings already generated for its children, run
//     the summarizer, insert the result into the source file, and persist
//     it to SQLite.
//
// The SQLite store is append-only and keyed by a hash of (file, name), so
// repeated runs skip everything already documented: documenting the same
// function twice performs no summarization, no file writes, and no new
// store entries.
//
// # Usage
//
// Create an Engine and point it at a target:
//
//	e, err := taproot.New("taproot.db", "path/to/project")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	doc, err := e.DocumentFunction(ctx, "path/to/project/util.py", "compute")
//
// [Engine.DocumentClass] documents each method of a class,
// [Engine.DocumentFile] every top-level definition of a file, and
// [Engine.DocumentDirectory] a whole source tree.
//
// # Summarizers
//
// Prose generation is pluggable. The default summarizer is a Risor script
// (embedded from the scripts directory) that builds deterministic scaffold
// docstrings; [WithScript] swaps in a script from disk, and
// [WithSummarizer] accepts any Go implementation, such as a client for a
// hosted model.
package taproot
