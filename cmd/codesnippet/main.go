package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/codesnippet"
	"github.com/jward/codesnippet/internal/config"
	"github.com/jward/codesnippet/internal/log"
	"github.com/jward/codesnippet/internal/report"
	"github.com/jward/codesnippet/internal/store"
	"github.com/jward/codesnippet/internal/typeindex"
)

var (
	flagConfig string
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codesnippet",
	Short:         "Extract and render marked code regions for documentation",
	Long:          "Codesnippet scans source trees for BEGIN/END marked regions, renders them as documentation markup and stores them in a SQLite database for lookup.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: "+config.FileName+" in repo root, if present)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: "+config.DefaultDB+" relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(typesCmd)
}

var (
	flagSnippetPath   []string
	flagMaxLineLength int
	flagEncoding      string
	flagParallel      bool
	flagStrict        bool
)

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Extract snippets from source roots into the database",
	Long: "Scans every root for marked regions, links type names against the type index of the visible roots, " +
		"and replaces the database contents with the result. Positional roots and config roots are visible; " +
		"--snippet-path roots only contribute snippets.",
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringSliceVar(&flagSnippetPath, "snippet-path", nil, "additional roots scanned for snippets only (repeatable)")
	indexCmd.Flags().IntVar(&flagMaxLineLength, "max-line-length", config.DefaultMaxLineLength, "longest allowed snippet line, 0 disables the check")
	indexCmd.Flags().StringVar(&flagEncoding, "encoding", "", "character encoding of the sources (default: utf-8)")
	indexCmd.Flags().BoolVar(&flagParallel, "parallel", false, "scan files with a worker pool")
	indexCmd.Flags().BoolVar(&flagStrict, "strict", false, "stop at the first error instead of reporting all of them")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}

	var visible []string
	for _, arg := range args {
		dir, err := resolveTargetDir(arg)
		if err != nil {
			return err
		}
		visible = append(visible, dir)
	}

	base := cwd
	if len(visible) > 0 {
		base = visible[0]
	}
	repoRoot := findRepoRoot(base)

	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	applyIndexFlags(cmd, cfg)

	logger := newLogger(cfg)

	roots := collectRoots(cfg, visible)
	if len(roots) == 0 {
		roots = []codesnippet.SearchRoot{{Path: base, Visible: true}}
	}

	var known []string
	for _, manifest := range cfg.KnownTypes {
		fqns, err := typeindex.LoadManifest(manifest)
		if err != nil {
			return fmt.Errorf("loading known types: %w", err)
		}
		known = append(known, fqns...)
	}

	opts := []codesnippet.Option{
		codesnippet.WithLogger(logger),
		codesnippet.WithMaxLineLength(cfg.LineLimit()),
		codesnippet.WithEncoding(cfg.Encoding),
		codesnippet.WithKnownTypes(known...),
		codesnippet.WithExcludes(cfg.Exclude...),
		codesnippet.WithParallel(cfg.Parallel),
	}
	if !flagStrict {
		opts = append(opts, codesnippet.WithReporter(report.LogReporter{Logger: logger}))
	}

	engine, err := codesnippet.New(opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	for _, r := range roots {
		engine.AddSearchRoot(r.Path, r.Visible)
	}

	scanStart := time.Now()
	reg, err := engine.Registry(context.Background())
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	scanDuration := time.Since(scanStart)

	dbPath := resolveDBPath(repoRoot, cfg.DB)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	storeStart := time.Now()
	if err := writeSnapshot(dbPath, reg, cfg, engine.Roots()); err != nil {
		return err
	}
	storeDuration := time.Since(storeStart)

	errs, warns := countDiagnostics(engine.Diagnostics())
	stats := engine.Stats()

	fmt.Fprintf(os.Stderr, "Indexed %d snippets from %d roots in %s (scan: %s, store: %s)\n",
		stats.Snippets,
		stats.Roots,
		time.Since(start).Round(time.Millisecond),
		scanDuration.Round(time.Millisecond),
		storeDuration.Round(time.Millisecond),
	)
	fmt.Fprintf(os.Stderr, "Scanned %d files (%d skipped), %d types, %d known types\n",
		stats.Files, stats.Skipped, stats.Types, stats.KnownTypes)
	fmt.Fprintf(os.Stderr, "Diagnostics: %d errors, %d warnings\n", errs, warns)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	if errs > 0 {
		return fmt.Errorf("indexing: %d errors reported", errs)
	}
	return nil
}

// applyIndexFlags overrides configuration with explicitly set index flags.
func applyIndexFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("max-line-length") {
		n := flagMaxLineLength
		cfg.MaxLineLength = &n
	}
	if flagEncoding != "" {
		cfg.Encoding = flagEncoding
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = flagParallel
	}
}

// collectRoots orders roots as positional, configured, then --snippet-path.
func collectRoots(cfg *config.Config, visible []string) []codesnippet.SearchRoot {
	var roots []codesnippet.SearchRoot
	for _, dir := range visible {
		roots = append(roots, codesnippet.SearchRoot{Path: dir, Visible: true})
	}
	for _, r := range cfg.Roots {
		roots = append(roots, codesnippet.SearchRoot{Path: r.Path, Visible: r.IsVisible()})
	}
	for _, p := range flagSnippetPath {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		roots = append(roots, codesnippet.SearchRoot{Path: abs, Visible: false})
	}
	return roots
}

// writeSnapshot replaces the database contents with the registry.
func writeSnapshot(dbPath string, reg *codesnippet.Registry, cfg *config.Config, roots []codesnippet.SearchRoot) error {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return err
	}

	list := reg.Snippets()
	snap := &store.Snapshot{
		Snippets: make([]*store.Snippet, 0, len(list)),
		Types:    reg.Types(),
		Metadata: map[string]string{
			"indexed_at":      time.Now().UTC().Format(time.RFC3339),
			"encoding":        cfg.Encoding,
			"max_line_length": strconv.Itoa(cfg.LineLimit()),
			"roots":           joinRoots(roots),
		},
	}
	for _, sn := range list {
		snap.Snippets = append(snap.Snippets, &store.Snippet{
			Root:     sn.Root,
			Path:     sn.File,
			Language: sn.Language,
			Region:   sn.Region,
			Text:     sn.Text,
		})
	}
	if err := s.ReplaceSnapshot(snap); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func joinRoots(roots []codesnippet.SearchRoot) string {
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = r.Path
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

func countDiagnostics(diags []codesnippet.Diagnostic) (errs, warns int) {
	for _, d := range diags {
		switch d.Severity {
		case codesnippet.Error:
			errs++
		case codesnippet.Warning:
			warns++
		}
	}
	return errs, warns
}

// loadConfig loads --config, or the repo root config file when present, or
// just defaults and environment.
func loadConfig(repoRoot string) (*config.Config, error) {
	path := flagConfig
	if path == "" {
		candidate := filepath.Join(repoRoot, config.FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	return config.Load(path)
}

// newLogger builds the CLI logger. Environment variables read by log.FromEnv
// take precedence over the config file.
func newLogger(cfg *config.Config) *slog.Logger {
	lc := log.FromEnv()
	if os.Getenv("CODESNIPPET_DEBUG") == "" && os.Getenv("CODESNIPPET_LOG_LEVEL") == "" && cfg.Log.Level != "" {
		lc.Level = strings.ToLower(cfg.Log.Level)
	}
	if cfg.Log.Format != "" {
		lc.Format = log.Format(strings.ToLower(cfg.Log.Format))
	}
	return log.New(lc)
}

// resolveTargetDir returns the absolute path of a directory argument.
func resolveTargetDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag, the
// configured path, or the default, relative paths joined to repoRoot.
func resolveDBPath(repoRoot, configured string) string {
	p := flagDB
	if p == "" {
		p = configured
	}
	if p == "" {
		p = config.DefaultDB
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, filepath.FromSlash(p))
}
