package store

import "time"

// File is one scanned file that contributed at least one snippet.
type File struct {
	ID          int64
	Root        string
	Path        string
	Language    string
	LastIndexed time.Time
}

// Snippet is one stored region. Root, Path and Language are filled from the
// owning file on reads.
type Snippet struct {
	ID       int64
	FileID   int64
	Root     string
	Path     string
	Language string
	Region   string
	Text     string
	Hash     string
}

// TypeEntry is one type index entry.
type TypeEntry struct {
	Name string
	FQN  string
}

// Snapshot is the complete result of one run.
type Snapshot struct {
	Snippets []*Snippet
	Types    map[string]string
	Metadata map[string]string
}
