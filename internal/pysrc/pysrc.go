// Package pysrc reads Python source units with tree-sitter: it locates
// function and class definitions, extracts call candidates from function
// bodies, and parses import statements.
package pysrc

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrNotFound is returned when a named function or class does not exist in
// the file it was expected in.
var ErrNotFound = errors.New("definition not found")

// Module is a parsed Python source file.
type Module struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// ParseFile reads and parses the Python file at path.
func ParseFile(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse parses Python source. The path is recorded for reporting only.
func Parse(path string, src []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Module{Path: path, Source: src, tree: tree}, nil
}

// Close releases the parse tree.
func (m *Module) Close() {
	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
}

func (m *Module) root() *sitter.Node {
	return m.tree.RootNode()
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
