package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmorrow/taproot"
	"github.com/jmorrow/taproot/internal/config"
)

var (
	flagDB      string
	flagRoot    string
	flagScript  string
	flagConfig  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "taproot",
	Short:         "Bottom-up Python docstring generation",
	Long:          "Taproot builds the call graph of a Python function with tree-sitter, documents its callees first, and writes each generated docstring into the source file and a SQLite store.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: taproot.db in the project root)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root for import resolution (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagScript, "script", "", "run the summarizer script at this path instead of the embedded one")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: taproot.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log each documented function")

	rootCmd.AddCommand(fnCmd)
	rootCmd.AddCommand(classCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(dirCmd)
	rootCmd.AddCommand(exportCmd)
}

// settings is the effective configuration: file values overridden by flags.
func settings() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagDB != "" {
		cfg.DB = flagDB
	}
	if flagScript != "" {
		cfg.Script = flagScript
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// newEngine builds an Engine from the effective configuration. The caller
// must Close it.
func newEngine() (*taproot.Engine, error) {
	cfg, err := settings()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", cfg.Root, err)
	}

	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	opts := []taproot.Option{taproot.WithLogger(log)}
	if len(cfg.Exclude) > 0 {
		opts = append(opts, taproot.WithExcludes(cfg.Exclude...))
	}
	if cfg.Script != "" {
		opt, err := taproot.WithScript(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("loading script %s: %w", cfg.Script, err)
		}
		opts = append(opts, opt)
	}

	dbPath := cfg.DB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	return taproot.New(dbPath, root, opts...)
}
