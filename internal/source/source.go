// Package source lists the files under a search root and decodes them into
// lines using the configured character encoding.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrMalformed is returned for content that is not valid in the configured
// encoding. Callers treat such files as binary and skip them.
var ErrMalformed = errors.New("malformed input")

// File is one regular file under a root.
type File struct {
	// Path is the absolute (or root-joined) path used to open the file.
	Path string
	// Rel is the slash-separated path relative to the root.
	Rel string
}

// ListFiles walks root depth-first in lexical order and returns every
// regular file whose relative path matches none of the exclude patterns.
// Patterns use doublestar syntax and are matched against the slash-separated
// relative path; a matching directory is pruned.
func ListFiles(root string, excludes []string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if Excluded(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, File{Path: path, Rel: rel})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Excluded reports whether rel matches any of the patterns. Invalid patterns
// never match.
func Excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidatePatterns returns an error for the first malformed pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Decoder turns raw file content into text.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder returns a decoder for the named encoding. The empty name means
// UTF-8. Names are resolved through the WHATWG encoding index, so labels
// such as "latin1" or "windows-1250" are accepted.
func NewDecoder(name string) (*Decoder, error) {
	if strings.TrimSpace(name) == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return &Decoder{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts raw to a string. Content that does not decode cleanly
// yields ErrMalformed.
func (d *Decoder) Decode(raw []byte) (string, error) {
	if d.name == "utf-8" {
		if !utf8.Valid(raw) {
			return "", ErrMalformed
		}
		return string(raw), nil
	}
	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrMalformed
	}
	return string(out), nil
}

// ReadLines reads and decodes path. Read failures are returned as is,
// decoding failures wrap ErrMalformed.
func (d *Decoder) ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := d.Decode(raw)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits text at "\n", "\r\n" and "\r". A trailing line
// terminator does not produce an empty last line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
