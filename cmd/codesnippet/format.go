package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatSnippetText writes the rendered text as is.
func formatSnippetText(w io.Writer, sn CLISnippet) {
	fmt.Fprint(w, sn.Text)
	if !strings.HasSuffix(sn.Text, "\n") {
		fmt.Fprintln(w)
	}
}

// formatSnippetsText formats CLISnippet results as aligned columns.
func formatSnippetsText(w io.Writer, snippets []CLISnippet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tREGION\tLANGUAGE\tSIZE\tROOT")
	for _, s := range snippets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.File, s.Region, s.Language, s.Size, s.Root)
	}
	tw.Flush()
}

// formatTypesText formats CLIType results as aligned columns.
func formatTypesText(w io.Writer, types []CLIType) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFQN")
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.FQN)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	return writeResultText(os.Stdout, result)
}

func writeResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLISnippet:
		formatSnippetText(w, v)
	case []CLISnippet:
		formatSnippetsText(w, v)
	case []CLIType:
		formatTypesText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		count := *result.TotalCount
		shown := resultLen(result.Results)
		if shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d results\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLISnippet:
		return len(r)
	case []CLIType:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
