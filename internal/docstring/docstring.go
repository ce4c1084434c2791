// Package docstring inserts generated documentation into Python source
// files. The docstring is placed as the first statement of the definition
// body, per Python convention; every other byte of the file is preserved.
package docstring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jmorrow/taproot/internal/pysrc"
)

// ErrNoAnchor is returned for definitions whose body starts on the
// signature line (def f(): pass) — there is no line to place a docstring
// on without reflowing the statement.
var ErrNoAnchor = errors.New("definition body is on the signature line")

// Insert writes doc as the docstring of the named function in the file at
// path. When className is non-empty the function is looked up as a method
// of that class. An existing docstring is replaced; otherwise the
// docstring is inserted before the first body statement. The file is
// rewritten atomically (temp file, then rename).
//
// The file is re-parsed on every call: earlier insertions shift byte
// offsets, so spans captured during graph construction cannot be trusted
// here.
func Insert(path, funcName, className, doc string) error {
	m, err := pysrc.ParseFile(path)
	if err != nil {
		return err
	}
	defer m.Close()

	var def *pysrc.Definition
	if className != "" {
		def, err = m.FindMethod(className, funcName)
	} else {
		def, err = m.FindDefinition(funcName)
	}
	if err != nil {
		return err
	}

	newContent, err := splice(m.Source, def, doc)
	if err != nil {
		return fmt.Errorf("insert docstring for %s: %w", funcName, err)
	}
	return writeAtomic(path, newContent)
}

// splice produces the new file content with doc installed as the
// definition's docstring.
func splice(source []byte, def *pysrc.Definition, doc string) ([]byte, error) {
	body := def.Node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return nil, ErrNoAnchor
	}
	first := body.NamedChild(0)

	// A body sharing the signature's row has no insertion line.
	if nameRow(def) == first.StartPoint().Row {
		return nil, ErrNoAnchor
	}

	col := int(first.StartPoint().Column)
	lineStart := int(first.StartByte()) - col
	indent := string(source[lineStart:first.StartByte()])

	block := indent + quote(doc, indent) + "\n"

	// Replace an existing docstring instead of stacking a second one.
	if isDocstring(first) {
		end := int(first.EndByte())
		if end < len(source) && source[end] == '\n' {
			end++
		}
		return spliceBytes(source, lineStart, end, block), nil
	}
	return spliceBytes(source, lineStart, lineStart, block), nil
}

func spliceBytes(source []byte, start, end int, insert string) []byte {
	out := make([]byte, 0, len(source)-(end-start)+len(insert))
	out = append(out, source[:start]...)
	out = append(out, insert...)
	out = append(out, source[end:]...)
	return out
}

// nameRow returns the row of the definition's name, which is the row the
// signature starts on (decorators sit on earlier rows).
func nameRow(def *pysrc.Definition) uint32 {
	if name := def.Node.ChildByFieldName("name"); name != nil {
		return name.StartPoint().Row
	}
	return def.Node.StartPoint().Row
}

// isDocstring reports whether the body's first statement is a bare string
// expression.
func isDocstring(stmt *sitter.Node) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return false
	}
	return stmt.NamedChild(0).Type() == "string"
}

// quote wraps doc in triple quotes, stripping any triple quotes the
// summarizer already added and re-indenting continuation lines to the body
// level.
func quote(doc string, indent string) string {
	doc = strings.TrimSpace(doc)
	doc = strings.TrimPrefix(doc, `"""`)
	doc = strings.TrimSuffix(doc, `"""`)
	doc = strings.TrimSpace(doc)

	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		return `"""` + doc + `"""`
	}
	var b strings.Builder
	b.WriteString(`"""`)
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		b.WriteString("\n")
		if strings.TrimSpace(line) != "" {
			b.WriteString(indent)
			b.WriteString(strings.TrimRight(line, " \t"))
		}
	}
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString(`"""`)
	return b.String()
}

// writeAtomic writes content to path via a temp file and rename, so a
// failure mid-write never leaves a truncated source file.
func writeAtomic(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".taproot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, info.Mode()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
