package typeindex

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed jdk.txt
var jdkManifest string

// KnownTypes is a set of fully-qualified type names. It stands in for a
// classpath when deciding whether "pkg.Name" denotes a real type.
type KnownTypes struct {
	set map[string]struct{}
}

// NewKnownTypes returns a set holding fqns.
func NewKnownTypes(fqns ...string) *KnownTypes {
	k := &KnownTypes{set: make(map[string]struct{}, len(fqns))}
	k.Add(fqns...)
	return k
}

// JDK returns a fresh set holding the bundled standard library manifest.
func JDK() *KnownTypes {
	fqns, _ := ReadManifest(strings.NewReader(jdkManifest))
	return NewKnownTypes(fqns...)
}

// Add inserts names into the set.
func (k *KnownTypes) Add(fqns ...string) {
	for _, f := range fqns {
		if f = strings.TrimSpace(f); f != "" {
			k.set[f] = struct{}{}
		}
	}
}

// AddIndex inserts every fully-qualified name of ix.
func (k *KnownTypes) AddIndex(ix Index) {
	k.Add(ix.FQNs()...)
}

// Has reports whether fqn is in the set. A nil set holds nothing.
func (k *KnownTypes) Has(fqn string) bool {
	if k == nil {
		return false
	}
	_, ok := k.set[fqn]
	return ok
}

// Len returns the number of names in the set.
func (k *KnownTypes) Len() int {
	if k == nil {
		return 0
	}
	return len(k.set)
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	fqns, err := ReadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return fqns, nil
}

// ReadManifest parses one fully-qualified name per line. Blank lines and
// lines starting with '#' are ignored.
func ReadManifest(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
