package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the docstring store to CSV",
	Long:  "Writes every stored docstring as CSV (file_path, func_name, unique_id, docstring) to --out, or stdout when omitted.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagOut, "out", "", "output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	out := os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagOut, err)
		}
		defer f.Close()
		out = f
	}

	if err := e.Store().ExportCSV(out); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	if flagOut != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", flagOut)
	}
	return nil
}
