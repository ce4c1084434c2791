package taproot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jmorrow/taproot/internal/discover"
	"github.com/jmorrow/taproot/internal/docstring"
	"github.com/jmorrow/taproot/internal/graph"
	"github.com/jmorrow/taproot/internal/pysrc"
	"github.com/jmorrow/taproot/internal/script"
	"github.com/jmorrow/taproot/internal/store"
	"github.com/jmorrow/taproot/scripts"
)

// Summarizer turns a definition's source text plus the documentation of
// its direct callees into documentation prose. Implementations need not be
// byte-deterministic; the store's first-write-wins policy means a function
// is only ever summarized once.
type Summarizer interface {
	Summarize(ctx context.Context, sourceText, childContext string) (string, error)
}

// Engine drives bottom-up documentation generation: build the call tree
// for a target, walk it children-first, summarize each undocumented node,
// write the docstring into the source file, and persist it.
type Engine struct {
	store      *store.Store
	root       string
	summarizer Summarizer
	log        *zap.Logger
	excludes   []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithSummarizer replaces the default script-based summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithExcludes adds directories (relative to the project root) that
// DocumentDirectory skips.
func WithExcludes(dirs ...string) Option {
	return func(e *Engine) {
		e.excludes = append(e.excludes, dirs...)
	}
}

// WithScript replaces the default summarizer with one running the Risor
// script at path on disk.
func WithScript(path string) (Option, error) {
	s, err := script.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return WithSummarizer(s), nil
}

// New creates an Engine backed by a SQLite database at dbPath, documenting
// the Python project rooted at projectRoot. Without options it logs
// nothing and summarizes with the embedded default script.
func New(dbPath, projectRoot string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("taproot: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("taproot: migrate: %w", err)
	}

	e := &Engine{store: s, root: projectRoot}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.summarizer == nil {
		def, err := script.Load(scripts.FS, scripts.Summarize)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("taproot: load default summarizer: %w", err)
		}
		e.summarizer = def
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// runState tracks one documentation run. docs maps identities to the text
// generated or fetched so far; done marks identities whose processing has
// started, which both de-duplicates shared subtrees and bounds the
// class-method re-entry cycle (a method whose call tree reaches back to
// its own class).
type runState struct {
	docs map[string]string
	done map[string]bool
}

func newRunState() *runState {
	return &runState{docs: make(map[string]string), done: make(map[string]bool)}
}

// DocumentFunction documents the named module-level function (or class)
// and everything it transitively calls, children first. Returns the
// documentation text generated (or previously stored) for the target.
// Running it again for the same target is a no-op.
func (e *Engine) DocumentFunction(ctx context.Context, filePath, name string) (string, error) {
	return e.documentOne(ctx, newRunState(), filePath, "", name)
}

// DocumentClass documents every method of the named class, in declared
// order, running the full per-function pipeline for each. There is no
// whole-class short-circuit: methods already documented are skipped
// individually.
func (e *Engine) DocumentClass(ctx context.Context, filePath, className string) error {
	return e.documentClass(ctx, newRunState(), filePath, className)
}

// DocumentFile documents every module-level function and class defined in
// filePath, in declared order.
func (e *Engine) DocumentFile(ctx context.Context, filePath string) error {
	return e.documentFile(ctx, newRunState(), filePath)
}

// DocumentDirectory documents every Python file under dir. Files that
// fail are logged and skipped; only a store failure aborts the run.
func (e *Engine) DocumentDirectory(ctx context.Context, dir string) error {
	files, err := discover.PythonFiles(dir, e.excludes...)
	if err != nil {
		return fmt.Errorf("taproot: discover %s: %w", dir, err)
	}
	st := newRunState()
	for _, rel := range files {
		if err := e.documentFile(ctx, st, filepath.Join(dir, rel)); err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				return err
			}
			e.log.Warn("skipping file", zap.String("file", rel), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) documentFile(ctx context.Context, st *runState, filePath string) error {
	m, err := pysrc.ParseFile(filePath)
	if err != nil {
		return err
	}
	defs := m.TopLevelDefs()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	m.Close()

	e.log.Info("documenting file",
		zap.String("file", filePath), zap.Int("definitions", len(names)))
	for _, name := range names {
		if _, err := e.documentOne(ctx, st, filePath, "", name); err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				return err
			}
			e.log.Warn("skipping definition", zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) documentClass(ctx context.Context, st *runState, filePath, className string) error {
	m, err := pysrc.ParseFile(filePath)
	if err != nil {
		return err
	}
	methods, err := m.ClassMethods(className)
	if err != nil {
		m.Close()
		return err
	}
	names := make([]string, len(methods))
	for i, d := range methods {
		names[i] = d.Name
	}
	m.Close()

	for _, name := range names {
		if _, err := e.documentOne(ctx, st, filePath, className, name); err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				return err
			}
			e.log.Warn("skipping method",
				zap.String("class", className), zap.String("method", name), zap.Error(err))
		}
	}
	return nil
}

// documentOne runs the full pipeline for a single target: identity
// short-circuit, call tree construction, post-order generation. Returns
// the target's documentation text, which is empty when generation for the
// target itself failed (already logged).
func (e *Engine) documentOne(ctx context.Context, st *runState, filePath, className, name string) (string, error) {
	id := store.Identity(store.RelPath(e.root, filePath), name)
	if doc, ok := st.docs[id]; ok {
		return doc, nil
	}
	text, found, err := e.store.Get(id)
	if err != nil {
		return "", err
	}
	if found {
		st.docs[id] = text
		st.done[id] = true
		return text, nil
	}

	b := graph.NewBuilder(e.root, e.store, e.log)
	defer b.Close()
	var node *graph.Node
	if className != "" {
		node, err = b.BuildMethod(filePath, className, name)
	} else {
		node, err = b.Build(filePath, name)
	}
	if err != nil {
		return "", err
	}

	if err := e.process(ctx, st, node); err != nil {
		return "", err
	}
	return st.docs[id], nil
}

// process documents a call-tree node in post-order: children first, then
// (for classes) each method, then the node itself. Node-local failures are
// logged and leave the node undocumented; only store failures propagate.
func (e *Engine) process(ctx context.Context, st *runState, n *graph.Node) error {
	if st.done[n.Identity] {
		return nil
	}
	// Marked before recursing so back-references in cyclic call graphs
	// terminate.
	st.done[n.Identity] = true

	if n.Terminal {
		text, found, err := e.store.Get(n.Identity)
		if err != nil {
			return err
		}
		if found {
			st.docs[n.Identity] = text
		}
		return nil
	}

	for _, child := range n.Children {
		if err := e.process(ctx, st, child); err != nil {
			return err
		}
	}

	calleeCtx := e.childContext(st, n)
	if n.Kind == graph.KindClass {
		// Document the class's methods first; their docstrings join the
		// callee context for the class's own summary.
		if err := e.documentClass(ctx, st, n.Path, n.Name); err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				return err
			}
			e.log.Warn("documenting class methods failed",
				zap.String("class", n.Name), zap.Error(err))
		}
		calleeCtx += e.methodContext(st, n)
	}

	doc, err := e.summarizer.Summarize(ctx, n.Source, calleeCtx)
	if err != nil || strings.TrimSpace(doc) == "" {
		e.log.Warn("summarization failed",
			zap.String("name", n.Name), zap.String("file", n.Path), zap.Error(err))
		return nil
	}

	if err := docstring.Insert(n.Path, n.Name, n.ClassName, doc); err != nil {
		e.log.Warn("docstring insertion failed",
			zap.String("name", n.Name), zap.String("file", n.Path), zap.Error(err))
		return nil
	}

	if err := e.store.Put(n.Identity, store.RelPath(e.root, n.Path), n.Name, doc); err != nil {
		return err
	}
	st.docs[n.Identity] = doc
	e.log.Info("documented",
		zap.String("name", n.Name), zap.String("file", store.RelPath(e.root, n.Path)))
	return nil
}

// childContext concatenates the documentation of a node's direct callees,
// in child order. Children that failed to generate contribute nothing.
func (e *Engine) childContext(st *runState, n *graph.Node) string {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, child := range n.Children {
		if seen[child.Identity] {
			continue
		}
		seen[child.Identity] = true
		doc, ok := st.docs[child.Identity]
		if !ok || doc == "" {
			continue
		}
		fmt.Fprintf(&b, "Function: %s\nDocstring: %s\n\n", child.Name, doc)
	}
	return b.String()
}

// methodContext concatenates the documentation generated for a class
// node's methods, in declared order. Parse failures yield no context; the
// class is still summarized from its source alone.
func (e *Engine) methodContext(st *runState, n *graph.Node) string {
	m, err := pysrc.ParseFile(n.Path)
	if err != nil {
		return ""
	}
	defer m.Close()
	methods, err := m.ClassMethods(n.Name)
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, def := range methods {
		id := store.Identity(store.RelPath(e.root, n.Path), def.Name)
		doc, ok := st.docs[id]
		if !ok || doc == "" {
			continue
		}
		fmt.Fprintf(&b, "Function: %s\nDocstring: %s\n\n", def.Name, doc)
	}
	return b.String()
}
