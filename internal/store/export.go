package store

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader matches the flat record layout consumed by downstream indexing
// tools: one row per documented function.
var csvHeader = []string{"file_path", "func_name", "unique_id", "docstring"}

// ExportCSV writes every persisted entry to w as CSV, header first.
func (s *Store) ExportCSV(w io.Writer) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.FilePath, e.FuncName, e.Identity, e.Docstring}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
