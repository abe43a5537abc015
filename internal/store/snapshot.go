package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// ReplaceSnapshot replaces everything stored with snap in a single
// transaction. Files are created on demand from the snippets' root and path.
// Snippets with an empty Hash get one computed.
func (s *Store) ReplaceSnapshot(snap *Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM snippets",
		"DELETE FROM files",
		"DELETE FROM types",
		"DELETE FROM metadata",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("replace snapshot: clear: %w", err)
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	fileIDs := make(map[[2]string]int64)
	for _, sn := range snap.Snippets {
		key := [2]string{sn.Root, sn.Path}
		fileID, ok := fileIDs[key]
		if !ok {
			fileID, err = insertFileTx(tx, &File{Root: sn.Root, Path: sn.Path, Language: sn.Language, LastIndexed: now})
			if err != nil {
				return fmt.Errorf("replace snapshot: file %q: %w", sn.Path, err)
			}
			fileIDs[key] = fileID
		}
		sn.FileID = fileID
		if sn.Hash == "" {
			sn.Hash = ComputeSnippetHash(sn.Path, sn.Region, sn.Text)
		}
		id, err := insertSnippetTx(tx, sn)
		if err != nil {
			return fmt.Errorf("replace snapshot: snippet %q in %q: %w", sn.Region, sn.Path, err)
		}
		sn.ID = id
	}

	for name, fqn := range snap.Types {
		if _, err := tx.Exec("INSERT INTO types (name, fqn) VALUES (?, ?)", name, fqn); err != nil {
			return fmt.Errorf("replace snapshot: type %q: %w", name, err)
		}
	}
	for k, v := range snap.Metadata {
		if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("replace snapshot: metadata %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace snapshot: commit: %w", err)
	}
	s.cache.Purge()
	return nil
}

func insertFileTx(tx *sql.Tx, f *File) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO files (root, path, language, last_indexed) VALUES (?, ?, ?, ?)",
		f.Root, f.Path, f.Language, f.LastIndexed,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

func insertSnippetTx(tx *sql.Tx, sn *Snippet) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO snippets (file_id, region, text, hash) VALUES (?, ?, ?, ?)",
		sn.FileID, sn.Region, sn.Text, sn.Hash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const snippetColumns = `SELECT s.id, s.file_id, f.root, f.path, f.language, s.region, s.text, s.hash
FROM snippets s JOIN files f ON f.id = s.file_id`

func scanSnippets(rows *sql.Rows) ([]*Snippet, error) {
	defer rows.Close()
	var out []*Snippet
	for rows.Next() {
		sn := &Snippet{}
		if err := rows.Scan(&sn.ID, &sn.FileID, &sn.Root, &sn.Path, &sn.Language, &sn.Region, &sn.Text, &sn.Hash); err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}

// SnippetsByFileRegion returns the snippets named region in files at the
// relative path. More than one result means several roots hold the path.
// No match returns an empty result and no error.
func (s *Store) SnippetsByFileRegion(path, region string) ([]*Snippet, error) {
	key := "f\x00" + path + "\x00" + region
	if hit, ok := s.cache.Get(key); ok {
		return hit, nil
	}
	rows, err := s.db.Query(snippetColumns+" WHERE f.path = ? AND s.region = ? ORDER BY f.root", path, region)
	if err != nil {
		return nil, fmt.Errorf("snippets by file region: %w", err)
	}
	out, err := scanSnippets(rows)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, out)
	return out, nil
}

// SnippetsByRegion returns every snippet named region, ordered by root and
// path.
func (s *Store) SnippetsByRegion(region string) ([]*Snippet, error) {
	key := "g\x00" + region
	if hit, ok := s.cache.Get(key); ok {
		return hit, nil
	}
	rows, err := s.db.Query(snippetColumns+" WHERE s.region = ? ORDER BY f.root, f.path", region)
	if err != nil {
		return nil, fmt.Errorf("snippets by region: %w", err)
	}
	out, err := scanSnippets(rows)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, out)
	return out, nil
}

// Snippets lists every stored snippet ordered by root, path and region.
func (s *Store) Snippets() ([]*Snippet, error) {
	rows, err := s.db.Query(snippetColumns + " ORDER BY f.root, f.path, s.region")
	if err != nil {
		return nil, fmt.Errorf("snippets: %w", err)
	}
	return scanSnippets(rows)
}

// Files lists the stored files ordered by root and path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, root, path, language, last_indexed FROM files ORDER BY root, path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Root, &f.Path, &f.Language, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Types returns the stored type index sorted by name.
func (s *Store) Types() ([]TypeEntry, error) {
	rows, err := s.db.Query("SELECT name, fqn FROM types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("types: %w", err)
	}
	defer rows.Close()
	var out []TypeEntry
	for rows.Next() {
		var te TypeEntry
		if err := rows.Scan(&te.Name, &te.FQN); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		out = append(out, te)
	}
	return out, rows.Err()
}

// Metadata returns the stored metadata value for key. A missing key returns
// "" and no error.
func (s *Store) Metadata(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("metadata %q: %w", key, err)
	}
	return v, nil
}

// SetMetadata upserts one metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// Regions returns the distinct region names, sorted.
func (s *Store) Regions() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT region FROM snippets")
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
