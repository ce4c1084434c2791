package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var fnCmd = &cobra.Command{
	Use:   "fn FILE FUNCTION",
	Short: "Document a function and everything it calls",
	Long:  "Builds the call tree of FUNCTION in FILE, documents its transitive callees children-first, then the function itself. Already-documented functions are skipped.",
	Args:  cobra.ExactArgs(2),
	RunE:  runFn,
}

var classCmd = &cobra.Command{
	Use:   "class FILE CLASS",
	Short: "Document every method of a class",
	Args:  cobra.ExactArgs(2),
	RunE:  runClass,
}

var fileCmd = &cobra.Command{
	Use:   "file FILE",
	Short: "Document every top-level function and class in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var dirCmd = &cobra.Command{
	Use:   "dir [PATH]",
	Short: "Document every Python file under a directory",
	Long:  "Documents every top-level definition of every Python file under PATH (default: the project root). Respects .gitignore; files that fail to parse are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDir,
}

func runFn(cmd *cobra.Command, args []string) error {
	file, err := resolveSourceFile(args[0])
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	doc, err := e.DocumentFunction(context.Background(), file, args[1])
	if err != nil {
		return fmt.Errorf("documenting %s: %w", args[1], err)
	}
	if doc == "" {
		fmt.Fprintf(os.Stderr, "No docstring generated for %s (see log)\n", args[1])
		return nil
	}
	fmt.Println(doc)
	return nil
}

func runClass(cmd *cobra.Command, args []string) error {
	file, err := resolveSourceFile(args[0])
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.DocumentClass(context.Background(), file, args[1]); err != nil {
		return fmt.Errorf("documenting class %s: %w", args[1], err)
	}
	return nil
}

func runFile(cmd *cobra.Command, args []string) error {
	file, err := resolveSourceFile(args[0])
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.DocumentFile(context.Background(), file); err != nil {
		return fmt.Errorf("documenting %s: %w", file, err)
	}
	return nil
}

func runDir(cmd *cobra.Command, args []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", abs)
	}

	start := time.Now()
	before, err := e.Store().Count()
	if err != nil {
		return err
	}
	if err := e.DocumentDirectory(context.Background(), abs); err != nil {
		return fmt.Errorf("documenting %s: %w", abs, err)
	}
	after, err := e.Store().Count()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Documented %d functions in %s (%d total in store)\n",
		after-before, time.Since(start).Round(time.Millisecond), after)
	return nil
}

// resolveSourceFile returns the absolute path of a Python source file.
func resolveSourceFile(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", arg, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", abs)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a file: %s", abs)
	}
	return abs, nil
}
