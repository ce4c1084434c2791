// Package script runs Risor summarizer scripts. Keeping the
// prose-generation logic in a script makes the summarizer swappable
// without recompiling: the default script builds deterministic scaffold
// docstrings, and users can point the engine at one that calls out to a
// real model.
package script

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
)

// ErrEmptyResult is returned when the script evaluates to an empty string.
var ErrEmptyResult = errors.New("summarizer script returned no text")

// Summarizer evaluates a Risor script to turn function source text plus
// child context into documentation text. The script receives the globals
// source_text and child_context and its final expression is the docstring.
type Summarizer struct {
	source string
	label  string
}

// New creates a Summarizer from Risor source. The label appears in error
// messages.
func New(source, label string) *Summarizer {
	return &Summarizer{source: source, label: label}
}

// Load reads a script from fsys.
func Load(fsys fs.FS, path string) (*Summarizer, error) {
	src, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	return New(string(src), path), nil
}

// Summarize runs the script with the given inputs and returns the
// docstring text it produced.
func (s *Summarizer) Summarize(ctx context.Context, sourceText, childContext string) (string, error) {
	result, err := risor.Eval(ctx, s.source,
		risor.WithGlobal("source_text", sourceText),
		risor.WithGlobal("child_context", childContext),
	)
	if err != nil {
		return "", fmt.Errorf("script %s: %w", s.label, err)
	}

	switch r := result.(type) {
	case *object.String:
		if r.Value() == "" {
			return "", fmt.Errorf("script %s: %w", s.label, ErrEmptyResult)
		}
		return r.Value(), nil
	case *object.Error:
		return "", fmt.Errorf("script %s: %s", s.label, r.Inspect())
	default:
		return "", fmt.Errorf("script %s: expected a string result, got %s", s.label, result.Type())
	}
}
