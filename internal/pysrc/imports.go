package pysrc

import (
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Import is one import statement's module path, as written, plus the
// symbol names a from-import pulls in. Plain "import a.b" has no Names.
type Import struct {
	// Module is the dotted module path as written. Relative imports keep
	// their leading dots ("..pkg", ".").
	Module string
	Names  []string
}

// Imports returns the file's import statements in declared order. The whole
// tree is walked, so imports inside functions and conditionals count too.
func (m *Module) Imports() []Import {
	var imports []Import
	walk(m.root(), func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			// import a.b, c.d as e — each named child is one module.
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if mod := importedModule(n.NamedChild(i), m.Source); mod != "" {
					imports = append(imports, Import{Module: mod})
				}
			}
		case "import_from_statement":
			// from a.b import c, d — first named child is the module (or
			// relative_import), the rest are names.
			if n.NamedChildCount() == 0 {
				return
			}
			imp := Import{Module: nodeText(n.NamedChild(0), m.Source)}
			for i := 1; i < int(n.NamedChildCount()); i++ {
				if name := importedModule(n.NamedChild(i), m.Source); name != "" {
					imp.Names = append(imp.Names, name)
				}
			}
			imports = append(imports, imp)
		}
	})
	return imports
}

// importedModule extracts the module text from a dotted_name or
// aliased_import child, skipping the alias.
func importedModule(n *sitter.Node, source []byte) string {
	switch n.Type() {
	case "dotted_name", "identifier":
		return nodeText(n, source)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return nodeText(name, source)
		}
	}
	return ""
}

func walk(n *sitter.Node, fn func(*sitter.Node)) {
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), fn)
	}
}

// Resolver maps imported module paths to files inside a project tree.
// Resolution never leaves Root: installed packages and the standard
// library are out of scope, and an unmapped module is simply not a
// project-local callee.
type Resolver struct {
	Root string
}

// Resolve translates imp's dotted module path to an existing project file.
// "a.b" becomes Root/a/b.py or Root/a/b/__init__.py; relative imports
// ("..pkg") are resolved against the importing file's directory. Returns
// ("", false) when no candidate file exists.
func (r *Resolver) Resolve(imp Import, importingFile string) (string, bool) {
	mod := imp.Module

	base := r.Root
	if strings.HasPrefix(mod, ".") {
		// One leading dot is the importing file's package, each extra dot
		// goes one directory up.
		base = filepath.Dir(importingFile)
		mod = mod[1:]
		for strings.HasPrefix(mod, ".") {
			base = filepath.Dir(base)
			mod = mod[1:]
		}
		if mod == "" {
			// "from . import x" — the symbol lives in a sibling module or
			// the package __init__.
			if path, ok := statFile(filepath.Join(base, "__init__.py")); ok {
				return path, true
			}
			return "", false
		}
	}

	rel := filepath.FromSlash(strings.ReplaceAll(mod, ".", "/"))
	if path, ok := statFile(filepath.Join(base, rel+".py")); ok {
		return path, true
	}
	if path, ok := statFile(filepath.Join(base, rel, "__init__.py")); ok {
		return path, true
	}
	return "", false
}

func statFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
