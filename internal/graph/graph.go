// Package graph builds the call tree for a target function: the function
// itself, plus every project-local function it transitively calls, with
// recursion stopping at already-documented identities, unresolvable names,
// and cycles.
package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jmorrow/taproot/internal/pysrc"
	"github.com/jmorrow/taproot/internal/store"
)

// Kind classifies a node's definition.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// Node is one function (or class) in a call tree. Nodes are created during
// construction and only ever mutated to attach children; a node reached
// through more than one call path is shared, making the tree a DAG.
type Node struct {
	Name      string
	Path      string // file that defines the function
	ClassName string // enclosing class for method roots, "" otherwise
	Identity  string
	Kind      Kind
	Source    string

	// Terminal marks a node whose documentation already exists in the
	// store. Terminal nodes are not expanded and not regenerated.
	Terminal bool

	Children []*Node
}

// ResolutionKind tags the outcome of resolving a callee name to a file.
type ResolutionKind int

const (
	// Unresolved means the name maps to no project file: a builtin, a
	// third-party call, or a dynamic target. Not an error.
	Unresolved ResolutionKind = iota
	// ResolvedLocal means the callee is defined in the calling file.
	ResolvedLocal
	// ResolvedImported means an import statement led to a project file
	// that defines the callee.
	ResolvedImported
)

// Builder constructs call trees. A Builder caches parsed modules for the
// duration of its lifetime and must be Closed when done. The visited map
// spans all Build calls on the same Builder, so shared subtrees across
// roots are built once.
type Builder struct {
	root    string // project root for import resolution and identities
	store   *store.Store
	log     *zap.Logger
	modules map[string]*pysrc.Module
	visited map[string]*Node
}

// NewBuilder returns a Builder for the project rooted at projectRoot.
func NewBuilder(projectRoot string, st *store.Store, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		root:    projectRoot,
		store:   st,
		log:     log,
		modules: make(map[string]*pysrc.Module),
		visited: make(map[string]*Node),
	}
}

// Close releases all cached parse trees.
func (b *Builder) Close() {
	for _, m := range b.modules {
		m.Close()
	}
	b.modules = nil
}

func (b *Builder) module(path string) (*pysrc.Module, error) {
	if m, ok := b.modules[path]; ok {
		return m, nil
	}
	m, err := pysrc.ParseFile(path)
	if err != nil {
		return nil, err
	}
	b.modules[path] = m
	return m, nil
}

func (b *Builder) identity(path, name string) string {
	return store.Identity(store.RelPath(b.root, path), name)
}

// Build constructs the call tree rooted at the module-level function or
// class name in filePath. Returns pysrc.ErrNotFound (wrapped) when the
// target does not exist; store errors are fatal and propagate.
func (b *Builder) Build(filePath, name string) (*Node, error) {
	return b.build(filePath, "", name)
}

// BuildMethod constructs the call tree rooted at a method of className.
// Callees are still resolved against the module level: a method calling a
// sibling method through self is an attribute call and out of scope.
func (b *Builder) BuildMethod(filePath, className, name string) (*Node, error) {
	return b.build(filePath, className, name)
}

func (b *Builder) build(filePath, className, name string) (*Node, error) {
	id := b.identity(filePath, name)
	if n, ok := b.visited[id]; ok {
		return n, nil
	}

	done, err := b.store.Has(id)
	if err != nil {
		return nil, fmt.Errorf("store lookup for %s: %w", name, err)
	}
	if done {
		n := &Node{Name: name, Path: filePath, ClassName: className, Identity: id, Terminal: true}
		b.visited[id] = n
		return n, nil
	}

	m, err := b.module(filePath)
	if err != nil {
		return nil, err
	}
	var def *pysrc.Definition
	if className != "" {
		def, err = m.FindMethod(className, name)
	} else {
		def, err = m.FindDefinition(name)
	}
	if err != nil {
		return nil, err
	}

	kind := KindFunction
	if def.Kind == pysrc.KindClass {
		kind = KindClass
	}
	n := &Node{
		Name:      name,
		Path:      filePath,
		ClassName: className,
		Identity:  id,
		Kind:      kind,
		Source:    def.Source(),
	}
	// Register before recursing so mutual and self calls attach a
	// back-reference instead of looping.
	b.visited[id] = n

	callees, err := m.Callees(def)
	if err != nil {
		return nil, err
	}
	for _, callee := range callees {
		path, res := b.Resolve(m, callee)
		if res == Unresolved {
			continue
		}
		child, err := b.build(path, "", callee)
		if err != nil {
			// A callee that vanished from its supposed file prunes this
			// branch only.
			b.log.Warn("skipping callee",
				zap.String("callee", callee),
				zap.String("file", path),
				zap.Error(err))
			continue
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// Resolve maps a callee name to the project file defining it. Same-file
// definitions win over imports; imports are tried in declared order; a name
// that maps to neither is Unresolved.
func (b *Builder) Resolve(m *pysrc.Module, callee string) (string, ResolutionKind) {
	if m.HasDef(callee) {
		return m.Path, ResolvedLocal
	}

	r := &pysrc.Resolver{Root: b.root}
	for _, imp := range m.Imports() {
		if path, ok := r.Resolve(imp, m.Path); ok {
			if im, err := b.module(path); err == nil && im.HasDef(callee) {
				return path, ResolvedImported
			}
		}
		// "from pkg import mod" can name a module rather than a symbol:
		// try pkg.mod as a module path too.
		for _, name := range imp.Names {
			if name != callee {
				continue
			}
			sub := pysrc.Import{Module: imp.Module + "." + callee}
			if imp.Module == "." {
				sub.Module = "." + callee
			}
			if path, ok := r.Resolve(sub, m.Path); ok {
				if im, err := b.module(path); err == nil && im.HasDef(callee) {
					return path, ResolvedImported
				}
			}
		}
	}
	return "", Unresolved
}
