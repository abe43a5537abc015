// Package codesnippet extracts labeled regions ("snippets") from source files
// and renders them as HTML fragments for embedding in API documentation.
// Java is the target language: its keywords are bolded, line comments and
// string literals are set in italics, and type names are linked with
// {@link fully.qualified.Name} references.
//
// # Markers
//
// A region starts and ends on a line of its own:
//
//	// BEGIN: region.name        // END: region.name
//	// @start region="name"      // @end region="name"
//	<!-- BEGIN: name -->         // FINISH: region.name
//
// A space must precede the keyword, so "GEN-BEGIN:" lines are not markers.
// Marker lines are never part of any region; regions may nest and overlap.
//
// Closing with FINISH appends the closing braces the region is missing,
// each indented like the line that opened it. END requires the braces to
// balance. @end never checks braces.
//
// # Pipeline
//
//  1. Index: visible roots are walked once and every Java type name is
//     mapped to its fully-qualified name.
//  2. Scan: every root is walked and each file scanned line by line. Closed
//     regions are dedented, checked for overlong lines, escaped and, for
//     Java files, rendered against the file's imports.
//  3. Register: per-file results are applied in path order into a
//     [Registry].
//
// # Usage
//
//	e, err := codesnippet.New(codesnippet.WithMaxLineLength(80))
//	if err != nil { ... }
//	e.AddSearchRoot("src/main/java", true)
//	e.AddSearchRoot("src/test/java", false)
//
//	text, err := e.FindGlobalSnippet(ctx, "day.end.bridges.Digest")
//	html := codesnippet.Pre(text)
//
// The registry is built on the first lookup and memoized; call
// [Engine.Reset] after changing roots or settings.
//
// # Diagnostics
//
// With [WithReporter], every problem is delivered to the reporter and the
// build continues. Without one, the first error about a region (unknown,
// duplicate or unclosed region, unpaired braces, overlong line) aborts the
// build and is returned; it unwraps to a *[Diagnostic]. Unreadable files and
// roots, binary files and ambiguous region names never abort.
package codesnippet
