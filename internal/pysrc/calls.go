package pysrc

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// callsQuery captures bare names in call position. Attribute calls
// (obj.method()) are deliberately not captured: only direct calls are
// candidates for project-local resolution.
const callsQuery = `(call function: (identifier) @callee)`

// localsQuery captures names bound inside the function body: parameters
// and simple assignment targets. A call to such a name is a call through a
// local binding, not to a module-level function, and is excluded from the
// candidate list. This is best-effort: a parameter that shadows a real
// function suppresses the candidate, and destructuring targets are not
// tracked.
const localsQuery = `
(parameters (identifier) @local)
(typed_parameter (identifier) @local)
(default_parameter name: (identifier) @local)
(typed_default_parameter name: (identifier) @local)
(assignment left: (identifier) @local)
(for_statement left: (identifier) @local)
`

var (
	queryOnce sync.Once
	callsQ    *sitter.Query
	localsQ   *sitter.Query
	queryErr  error
)

func compileQueries() error {
	queryOnce.Do(func() {
		lang := python.GetLanguage()
		callsQ, queryErr = sitter.NewQuery([]byte(callsQuery), lang)
		if queryErr != nil {
			queryErr = fmt.Errorf("compile calls query: %w", queryErr)
			return
		}
		localsQ, queryErr = sitter.NewQuery([]byte(localsQuery), lang)
		if queryErr != nil {
			queryErr = fmt.Errorf("compile locals query: %w", queryErr)
		}
	})
	return queryErr
}

// captureNames runs query over node and returns the captured identifier
// texts in source order.
func captureNames(query *sitter.Query, node *sitter.Node, source []byte) []string {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, node)

	var names []string
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			names = append(names, nodeText(c.Node, source))
		}
	}
	return names
}

// Callees returns the ordered, de-duplicated bare names invoked inside the
// definition's body, excluding names bound locally (parameters, assignment
// targets). These are candidates only; resolution to project files happens
// later.
func (m *Module) Callees(def *Definition) ([]string, error) {
	if err := compileQueries(); err != nil {
		return nil, err
	}

	locals := make(map[string]bool)
	for _, name := range captureNames(localsQ, def.Node, m.Source) {
		locals[name] = true
	}

	seen := make(map[string]bool)
	var callees []string
	for _, name := range captureNames(callsQ, def.Node, m.Source) {
		if seen[name] || locals[name] {
			continue
		}
		seen[name] = true
		callees = append(callees, name)
	}
	return callees, nil
}
