package pysrc

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// DefKind distinguishes function and class definitions.
type DefKind string

const (
	KindFunction DefKind = "function"
	KindClass    DefKind = "class"
)

// Definition is a located function or class definition.
type Definition struct {
	Name string
	Kind DefKind

	// Node is the function_definition or class_definition node.
	Node *sitter.Node

	// outer is the decorated_definition wrapper when the definition is
	// decorated, otherwise identical to Node. The source span is taken from
	// outer so decorators are part of the definition's text.
	outer *sitter.Node

	source []byte
}

// Source returns the exact source text of the definition, decorators
// included.
func (d *Definition) Source() string {
	return nodeText(d.outer, d.source)
}

// Span returns the byte range of the definition within its file.
func (d *Definition) Span() (start, end uint32) {
	return d.outer.StartByte(), d.outer.EndByte()
}

// unwrapDef returns the inner def node for a top-level statement, looking
// through decorated_definition wrappers. Returns nil for statements that
// are not function or class definitions.
func unwrapDef(stmt *sitter.Node) (inner, outer *sitter.Node) {
	outer = stmt
	inner = stmt
	if stmt.Type() == "decorated_definition" {
		if def := stmt.ChildByFieldName("definition"); def != nil {
			inner = def
		}
	}
	switch inner.Type() {
	case "function_definition", "class_definition":
		return inner, outer
	}
	return nil, nil
}

// defName extracts the identifier of a function_definition or
// class_definition node.
func defName(def *sitter.Node, source []byte) string {
	if name := def.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}
	for i := 0; i < int(def.ChildCount()); i++ {
		child := def.Child(i)
		if child.Type() == "identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

func (m *Module) definitionFrom(stmt *sitter.Node) *Definition {
	inner, outer := unwrapDef(stmt)
	if inner == nil {
		return nil
	}
	kind := KindFunction
	if inner.Type() == "class_definition" {
		kind = KindClass
	}
	return &Definition{
		Name:   defName(inner, m.Source),
		Kind:   kind,
		Node:   inner,
		outer:  outer,
		source: m.Source,
	}
}

// TopLevelDefs returns the file's module-level function and class
// definitions in declared order.
func (m *Module) TopLevelDefs() []*Definition {
	var defs []*Definition
	root := m.root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if d := m.definitionFrom(root.NamedChild(i)); d != nil {
			defs = append(defs, d)
		}
	}
	return defs
}

// FindDefinition locates a module-level function or class by name. Only
// the module body is scanned; nested definitions are not searched.
// Returns ErrNotFound if absent.
func (m *Module) FindDefinition(name string) (*Definition, error) {
	for _, d := range m.TopLevelDefs() {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", name, m.Path, ErrNotFound)
}

// HasDef reports whether a module-level function or class named name exists.
func (m *Module) HasDef(name string) bool {
	_, err := m.FindDefinition(name)
	return err == nil
}

// ClassMethods returns the method definitions of the named class in
// declared order. Returns ErrNotFound if the class is absent.
func (m *Module) ClassMethods(className string) ([]*Definition, error) {
	class, err := m.FindDefinition(className)
	if err != nil {
		return nil, err
	}
	if class.Kind != KindClass {
		return nil, fmt.Errorf("class %s in %s: %w", className, m.Path, ErrNotFound)
	}

	body := class.Node.ChildByFieldName("body")
	if body == nil {
		return nil, nil
	}
	var methods []*Definition
	for i := 0; i < int(body.NamedChildCount()); i++ {
		d := m.definitionFrom(body.NamedChild(i))
		if d != nil && d.Kind == KindFunction {
			methods = append(methods, d)
		}
	}
	return methods, nil
}

// FindMethod locates a method of the named class. Returns ErrNotFound if
// either the class or the method is absent.
func (m *Module) FindMethod(className, name string) (*Definition, error) {
	methods, err := m.ClassMethods(className)
	if err != nil {
		return nil, err
	}
	for _, d := range methods {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%s.%s in %s: %w", className, name, m.Path, ErrNotFound)
}
