package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/codesnippet"
	"github.com/jward/codesnippet/internal/store"
)

// --- Helpers ---

// openStore opens the Store from the --db flag path (or configured default).
func openStore() (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	dbPath := resolveDBPath(repoRoot, cfg.DB)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'codesnippet index' first)", dbPath)
	}
	return store.NewStore(dbPath)
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// snippetToCLI converts a stored snippet. withText controls whether the
// rendered text is included.
func snippetToCLI(sn *store.Snippet, withText bool) CLISnippet {
	c := CLISnippet{
		Root:     sn.Root,
		File:     sn.Path,
		Region:   sn.Region,
		Language: sn.Language,
		Size:     len(sn.Text),
		Hash:     sn.Hash,
	}
	if withText {
		c.Text = sn.Text
	}
	return c
}

// pickSnippet applies the registry lookup rules to stored rows: none is
// ErrNotFound, rows from more than one file are ErrAmbiguous for a global
// lookup. For a file lookup the first root wins.
func pickSnippet(rows []*store.Snippet, file, region string) (*store.Snippet, error) {
	if len(rows) == 0 {
		if file != "" {
			return nil, fmt.Errorf("region %s in %s: %w", region, file, codesnippet.ErrNotFound)
		}
		return nil, fmt.Errorf("region %s: %w", region, codesnippet.ErrNotFound)
	}
	if file == "" {
		seen := make(map[string]bool)
		var files []string
		for _, r := range rows {
			if !seen[r.Path] {
				seen[r.Path] = true
				files = append(files, r.Path)
			}
		}
		if len(files) > 1 {
			sort.Strings(files)
			return nil, fmt.Errorf("region %s in %s: %w", region, strings.Join(files, ", "), codesnippet.ErrAmbiguous)
		}
	}
	return rows[0], nil
}

// --- get ---

var (
	flagFile string
	flagPre  bool
)

var getCmd = &cobra.Command{
	Use:   "get <region>",
	Short: "Print the rendered text of a snippet",
	Long:  "Looks up a region by name across all indexed files, or in one file with --file (path relative to its root).",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&flagFile, "file", "", "file the region is defined in, relative to its root")
	getCmd.Flags().BoolVar(&flagPre, "pre", false, "wrap the text in the snippet <pre> element")
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("get", err)
	}
	defer s.Close()

	region := args[0]
	var rows []*store.Snippet
	var file string
	if flagFile != "" {
		file = codesnippet.CleanFile(flagFile)
		rows, err = s.SnippetsByFileRegion(file, region)
	} else {
		rows, err = s.SnippetsByRegion(region)
	}
	if err != nil {
		return outputError("get", err)
	}

	sn, err := pickSnippet(rows, file, region)
	if err != nil {
		return outputError("get", err)
	}

	result := snippetToCLI(sn, true)
	if flagPre {
		result.Text = codesnippet.Pre(result.Text)
	}
	return outputResult(CLIResult{
		Command: "get",
		Results: result,
	})
}

// --- list ---

var flagRegion string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed snippets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&flagRegion, "region", "", "only snippets with this region name")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("list", err)
	}
	defer s.Close()

	var rows []*store.Snippet
	if flagRegion != "" {
		rows, err = s.SnippetsByRegion(flagRegion)
	} else {
		rows, err = s.Snippets()
	}
	if err != nil {
		return outputError("list", err)
	}

	results := make([]CLISnippet, 0, len(rows))
	for _, r := range rows {
		results = append(results, snippetToCLI(r, false))
	}
	total := len(results)
	return outputResult(CLIResult{
		Command:    "list",
		Results:    results,
		TotalCount: &total,
	})
}

// --- types ---

var flagName string

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the type index used for linking",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func init() {
	typesCmd.Flags().StringVar(&flagName, "name", "", "only the entry for this simple name")
}

func runTypes(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("types", err)
	}
	defer s.Close()

	entries, err := s.Types()
	if err != nil {
		return outputError("types", err)
	}

	results := make([]CLIType, 0, len(entries))
	for _, e := range entries {
		if flagName != "" && e.Name != flagName {
			continue
		}
		results = append(results, CLIType{Name: e.Name, FQN: e.FQN})
	}
	total := len(results)
	return outputResult(CLIResult{
		Command:    "types",
		Results:    results,
		TotalCount: &total,
	})
}
